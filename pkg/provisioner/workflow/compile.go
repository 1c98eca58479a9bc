package workflow

import (
	"fmt"

	shellwords "github.com/cz-vaporeon/basin/internal/shellescape"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

// Compile builds the job spec for f. project is the workflow engine
// project the job is submitted under. The only supported condition is
// Cron and the only supported step transformation is Sql; any other
// variant is a compile error, which flow validation reports as a
// validation error and flow reconcile as a controller error.
func Compile(f *descriptor.Flow, project string) (*JobSpec, error) {
	if f.Condition.Kind != descriptor.ConditionCron {
		return nil, fmt.Errorf("workflow: unsupported flow condition %q", f.Condition.Kind)
	}

	spec := &JobSpec{
		UUID:        f.ID(),
		Project:     project,
		Name:        f.Name,
		Description: f.Summary,
		Paused:      false,
		Triggers: []Trigger{
			{Name: "cron", Start: primordialTime, Cron: f.Condition.Schedule},
		},
	}

	for _, step := range f.Steps {
		if step.Transformation.Kind != descriptor.TransformationSql {
			return nil, fmt.Errorf("workflow: step %q has unsupported transformation %q", step.Name, step.Transformation.Kind)
		}

		var depends []string
		if len(step.Parents) == 0 {
			depends = []string{"trigger/cron"}
		} else {
			depends = make([]string, 0, len(step.Parents))
			for _, p := range step.Parents {
				depends = append(depends, "task/"+p)
			}
		}

		spec.Tasks = append(spec.Tasks, Task{
			Name: step.Name,
			Docker: Docker{
				Image: "bash",
				Args:  []string{"-c", fmt.Sprintf("echo \"%s\"", shellwords.Quote(step.Transformation.Sql))},
			},
			Depends: depends,
		})
	}

	return spec, nil
}
