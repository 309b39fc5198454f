// Package workflow defines the store interface through which the scheduler
// reads workflow and step state, plus an in-memory implementation for
// single-process deployments and tests.
//
// The split mirrors the rest of the wiring: the resolver and dispatcher
// program against Store, so a persistence-backed implementation can be
// swapped in without touching scheduling logic.
package workflow

import (
	"errors"
	"fmt"

	"github.com/vk/dispatchgrid/internal/model"
)

// ErrNotFound is returned when a workflow or step ID names nothing.
var ErrNotFound = errors.New("workflow: not found")

// Store is the read/write surface over workflow state. The scheduling core
// only ever reads; step status writes come from the execution layer.
type Store interface {
	// Workflow returns the workflow with the given ID.
	Workflow(id string) (*model.Workflow, error)

	// ActiveWorkflowIDs returns the IDs of workflows in the active state,
	// sorted, for cycle enumeration.
	ActiveWorkflowIDs() []string

	// SetStepStatus transitions one step's status.
	SetStepStatus(workflowID, stepID string, status model.StepStatus) error

	// ClaimStep atomically re-validates that the workflow is active and the
	// step still pending, and if so marks the step scheduled. It returns
	// false when the decision has gone stale (workflow paused or aborted,
	// step already claimed or finished), which callers treat as a no-op.
	ClaimStep(workflowID, stepID string) (bool, error)

	// SetWorkflowStatus transitions a workflow's status.
	SetWorkflowStatus(workflowID string, status model.WorkflowStatus) error
}

// stepError builds a consistent not-found error.
func stepError(workflowID, stepID string) error {
	return fmt.Errorf("step %q in workflow %q: %w", stepID, workflowID, ErrNotFound)
}
