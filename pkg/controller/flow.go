package controller

import (
	"context"

	"github.com/cz-vaporeon/basin/internal/store"
	"github.com/cz-vaporeon/basin/pkg/descriptor"
	"github.com/cz-vaporeon/basin/pkg/provisioner/workflow"
)

// workflowProvisioner is the subset of workflow.Provisioner the flow
// controller needs.
type workflowProvisioner interface {
	Submit(ctx context.Context, spec *workflow.JobSpec) error
}

// FlowController validates and reconciles flow descriptors by compiling
// them to a workflow-engine job spec and submitting it.
type FlowController struct {
	store    *store.DescriptorStore
	workflow workflowProvisioner
	project  string
}

// NewFlowController builds a FlowController. project names the workflow
// engine project every compiled job is submitted under.
func NewFlowController(s *store.DescriptorStore, wf workflowProvisioner, project string) *FlowController {
	return &FlowController{store: s, workflow: wf, project: project}
}

func (c *FlowController) Kind() string { return string(descriptor.KindFlow) }

func (c *FlowController) List(ctx context.Context) ([]*descriptor.Flow, error) {
	return c.store.ListFlows(ctx)
}

// Validate attempts the job-spec compilation; any unsupported condition or
// step transformation fails validation before anything is submitted.
// Cycle detection among step parents is deferred to the workflow engine.
func (c *FlowController) Validate(f *descriptor.Flow) error {
	_, err := workflow.Compile(f, c.project)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// Reconcile compiles f and submits it to the workflow engine.
func (c *FlowController) Reconcile(ctx context.Context, f *descriptor.Flow) error {
	spec, err := workflow.Compile(f, c.project)
	if err != nil {
		return &ControllerError{Cause: err}
	}
	if err := c.workflow.Submit(ctx, spec); err != nil {
		return &ProvisionerError{Cause: err}
	}
	return nil
}
