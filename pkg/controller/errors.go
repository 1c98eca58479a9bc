package controller

import "fmt"

// ValidationError signals a descriptor that fails syntactic constraints.
// It is surfaced to the submitter as a bad request and is never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// DependencyMissingError signals that a referenced descriptor is not yet
// known. It is non-fatal: the control loop retries on the next tick.
type DependencyMissingError struct {
	Ref string
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("dependency missing: %s", e.Ref)
}

// ProvisionerError wraps a failed downstream call (object store, catalog,
// workflow engine). It is logged with context and retried by the next
// tick, never inside the current one.
type ProvisionerError struct {
	Cause error
}

func (e *ProvisionerError) Error() string { return fmt.Sprintf("provisioner error: %v", e.Cause) }
func (e *ProvisionerError) Unwrap() error { return e.Cause }

// ControllerError signals an internal logic error, such as a compiled job
// spec that should have been rejected by validation.
type ControllerError struct {
	Cause error
}

func (e *ControllerError) Error() string { return fmt.Sprintf("controller error: %v", e.Cause) }
func (e *ControllerError) Unwrap() error { return e.Cause }
