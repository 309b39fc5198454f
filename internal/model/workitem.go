// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// WorkItem is a single schedulable unit of work.
//
// RequiredCapabilities and RequiredSkills are both hard filters: an agent
// must hold every listed entry to qualify. An empty RequiredCapabilities set
// matches every agent trivially.
type WorkItem struct {
	// ID is unique across the scheduling run. Items converted from workflow
	// steps use "<workflow_id>/<step_id>".
	ID string

	// WorkflowID and StepID are the source coordinates for items converted
	// from workflow steps. Both are empty for standalone items, which the
	// execution layer then dispatches without the step-status gate.
	WorkflowID string
	StepID     string

	Priority Priority

	// RequiredCapabilities must all be present in the agent's effective
	// capability set.
	RequiredCapabilities []string

	// RequiredSkills, when non-empty, must all be present in the agent's
	// skill set. Skills are the stricter, named-resource variant of a
	// capability.
	RequiredSkills []string

	// CreatedAt feeds the age bonus of the priority score. A zero value is
	// treated as "just created" (no bonus).
	CreatedAt time.Time

	// Payload carries opaque, already-evaluated configuration values for the
	// execution backend. The scheduler never inspects it.
	Payload map[string]cty.Value
}
