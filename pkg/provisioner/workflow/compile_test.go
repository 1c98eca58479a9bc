package workflow

import (
	"testing"

	"github.com/cz-vaporeon/basin/pkg/descriptor"
)

func TestCompile_CronFlowWithNoParentsDependsOnTrigger(t *testing.T) {
	f := &descriptor.Flow{
		DescriptorID: "f1",
		Name:         "rollup",
		Condition:    descriptor.FlowCondition{Kind: descriptor.ConditionCron, Schedule: "0 3 * * *"},
		Steps: []descriptor.FlowStep{
			{Name: "extract", Transformation: descriptor.StepTransformation{Kind: descriptor.TransformationSql, Sql: "select 1"}},
		},
	}

	spec, err := Compile(f, "basin")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if len(spec.Triggers) != 1 || spec.Triggers[0].Cron != "0 3 * * *" {
		t.Fatalf("unexpected triggers: %+v", spec.Triggers)
	}
	if len(spec.Tasks) != 1 || len(spec.Tasks[0].Depends) != 1 || spec.Tasks[0].Depends[0] != "trigger/cron" {
		t.Fatalf("expected root task to depend on trigger/cron, got %+v", spec.Tasks)
	}
}

func TestCompile_StepDependsOnParentTask(t *testing.T) {
	f := &descriptor.Flow{
		DescriptorID: "f1",
		Name:         "rollup",
		Condition:    descriptor.FlowCondition{Kind: descriptor.ConditionCron, Schedule: "@daily"},
		Steps: []descriptor.FlowStep{
			{Name: "extract", Transformation: descriptor.StepTransformation{Kind: descriptor.TransformationSql, Sql: "select 1"}},
			{Name: "aggregate", Parents: []string{"extract"}, Transformation: descriptor.StepTransformation{Kind: descriptor.TransformationSql, Sql: "select 2"}},
		},
	}

	spec, err := Compile(f, "basin")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if len(spec.Tasks) != 2 || spec.Tasks[1].Depends[0] != "task/extract" {
		t.Fatalf("expected dependent task to depend on task/extract, got %+v", spec.Tasks)
	}
}

func TestCompile_RejectsUpstreamCondition(t *testing.T) {
	f := &descriptor.Flow{
		DescriptorID: "f1",
		Condition:    descriptor.FlowCondition{Kind: descriptor.ConditionUpstream, Upstream: "other"},
	}

	if _, err := Compile(f, "basin"); err == nil {
		t.Fatal("expected error for unsupported upstream condition")
	}
}

func TestCompile_EscapesSqlForShellSafety(t *testing.T) {
	f := &descriptor.Flow{
		DescriptorID: "f1",
		Condition:    descriptor.FlowCondition{Kind: descriptor.ConditionCron, Schedule: "@daily"},
		Steps: []descriptor.FlowStep{
			{Name: "extract", Transformation: descriptor.StepTransformation{Kind: descriptor.TransformationSql, Sql: `select "x"`}},
		},
	}

	spec, err := Compile(f, "basin")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	args := spec.Tasks[0].Docker.Args
	want := []string{"-c", `echo "select \"x\""`}
	if len(args) != 2 || args[0] != want[0] || args[1] != want[1] {
		t.Fatalf("unexpected docker args: %+v, want %+v", args, want)
	}
}

// TestCompile_S5ProducesLiteralEchoArgs pins the exact generated docker
// args for a plain SQL statement with no special characters.
func TestCompile_S5ProducesLiteralEchoArgs(t *testing.T) {
	f := &descriptor.Flow{
		DescriptorID: "f1",
		Name:         "rollup",
		Condition:    descriptor.FlowCondition{Kind: descriptor.ConditionCron, Schedule: "0 3 * * *"},
		Steps: []descriptor.FlowStep{
			{Name: "extract", Transformation: descriptor.StepTransformation{Kind: descriptor.TransformationSql, Sql: "SELECT 1"}},
		},
	}

	spec, err := Compile(f, "basin")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	args := spec.Tasks[0].Docker.Args
	want := []string{"-c", `echo "SELECT 1"`}
	if len(args) != 2 || args[0] != want[0] || args[1] != want[1] {
		t.Fatalf("got args %+v, want %+v", args, want)
	}
}
