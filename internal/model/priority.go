// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

import "fmt"

// Priority is the ordered urgency class of a work item. Lower numeric value
// means more urgent; PriorityCritical sorts before PriorityLow.
type Priority int

const (
	// PriorityCritical (P0) is reserved for work that must win any
	// contention within a scheduling cycle.
	PriorityCritical Priority = iota
	// PriorityHigh (P1).
	PriorityHigh
	// PriorityMedium (P2) is the default for steps that declare nothing.
	PriorityMedium
	// PriorityLow (P3).
	PriorityLow
)

// String returns the canonical short form used in config files and logs.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "P0"
	case PriorityHigh:
		return "P1"
	case PriorityMedium:
		return "P2"
	case PriorityLow:
		return "P3"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// ParsePriority converts the config-file form ("P0".."P3") into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "P0":
		return PriorityCritical, nil
	case "P1":
		return PriorityHigh, nil
	case "P2":
		return PriorityMedium, nil
	case "P3":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q (want P0, P1, P2 or P3)", s)
}
