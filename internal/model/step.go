// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Step and Workflow structures, the persistent shape
// of the work the scheduler reasons about.
//
// Why does Step carry scheduling requirements?
//
// A step is both a graph node (status plus dependency edges, which the
// resolver consumes) and the template for a WorkItem (requirements plus
// priority, which the scheduler consumes once the step is ready). Keeping
// the two halves on one struct means converting a ready step into a work
// item is a pure copy with no extra lookup, and the workflow store stays the
// single source of truth for both.
package model

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// StepStatus is the lifecycle state of a workflow step. The scheduler only
// ever reads it; transitions are owned by the execution layer.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepScheduled StepStatus = "scheduled"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// Terminal reports whether the status is final.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// Step is one node of a workflow's directed dependency graph.
type Step struct {
	ID     string
	Status StepStatus

	// DependsOn lists step IDs that must reach StepCompleted before this
	// step is ready. An ID that names no step in the workflow makes this
	// step permanently not-ready and the wave partition unsatisfiable.
	DependsOn []string

	RequiredCapabilities []string
	RequiredSkills       []string
	Priority             Priority

	// TargetLevel, when non-empty, restricts the step to agents of exactly
	// that level.
	TargetLevel Level

	CreatedAt time.Time

	// Arguments are evaluated HCL attribute values handed through to the
	// execution backend.
	Arguments map[string]cty.Value
}

// WorkflowStatus is the lifecycle state of a whole workflow.
type WorkflowStatus string

const (
	WorkflowActive    WorkflowStatus = "active"
	WorkflowPaused    WorkflowStatus = "paused"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
)

// Workflow is a named DAG of steps.
type Workflow struct {
	ID     string
	Status WorkflowStatus
	Steps  []*Step
}

// Step returns the step with the given ID, or nil.
func (w *Workflow) Step(id string) *Step {
	for _, s := range w.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Done reports whether every step has reached a terminal status.
func (w *Workflow) Done() bool {
	for _, s := range w.Steps {
		if !s.Status.Terminal() {
			return false
		}
	}
	return true
}
