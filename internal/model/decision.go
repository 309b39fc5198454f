// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "time"

// SchedulingDecision pairs one work item with the agent chosen for it. It is
// created fresh per scheduling attempt, never mutated, and consumed by the
// execution layer, which performs the actual enqueue.
type SchedulingDecision struct {
	// ID is a uuid identifying this decision in logs and the audit history.
	ID string `json:"id"`

	WorkItem *WorkItem `json:"-"`

	// WorkItemID is duplicated from WorkItem for JSON consumers.
	WorkItemID string `json:"work_item_id"`

	// AssignedTo is the role ID of the chosen agent.
	AssignedTo string `json:"assigned_to"`

	// Reason is a free-text rationale for audit output.
	Reason string `json:"reason"`

	// Alternatives lists the next-best candidates in rank order, bounded to
	// the top few.
	Alternatives []string `json:"alternatives,omitempty"`

	// PriorityScore is the numeric score the item held when the decision was
	// made, recorded for audit ordering.
	PriorityScore float64 `json:"priority_score"`

	DecidedAt time.Time `json:"decided_at"`
}
