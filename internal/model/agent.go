// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package model

// Level is an agent's categorical rank. It is an optional hard filter on
// matching, never a score.
type Level string

const (
	LevelWorker   Level = "worker"
	LevelDirector Level = "director"
	LevelVP       Level = "vp"
)

// Health is the categorical health state reported by an external monitor.
type Health string

const (
	HealthHealthy      Health = "healthy"
	HealthDegraded     Health = "degraded"
	HealthUnresponsive Health = "unresponsive"
)

// AgentInfo is the scheduling-relevant projection of an agent as held by the
// capability registry. Queue depth and health are deliberately absent: they
// are live values owned by external collaborators and read per attempt, not
// registration-time facts.
type AgentInfo struct {
	RoleID string
	Level  Level

	// Capabilities is the effective set: explicitly registered capabilities
	// unioned with those implied by the agent's skills.
	Capabilities map[string]struct{}

	// Skills is the set of named skills the agent has access to.
	Skills map[string]struct{}
}
