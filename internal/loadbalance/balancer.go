// Package loadbalance converts a list of qualified agents into a list of
// schedulable-now agents ordered by ascending load. It owns no durable state
// of its own: queue depth and health are read from injected collaborators,
// so a Balancer can be shared across scheduling cycles without going stale.
package loadbalance

import (
	"sort"

	"github.com/vk/dispatchgrid/internal/model"
)

// DepthSource reports the current assigned-but-not-completed count for an
// agent. An agent with no record has depth 0.
type DepthSource interface {
	QueueDepth(roleID string) int
}

// HealthSource reports the current health state for an agent.
type HealthSource interface {
	Health(roleID string) model.Health
}

// AgentLoad is one row of the observability report.
type AgentLoad struct {
	QueueDepth  int     `json:"queue_depth"`
	Available   bool    `json:"available"`
	Utilization float64 `json:"utilization"`
}

// Balancer ranks agents by availability.
type Balancer struct {
	depth    DepthSource
	health   HealthSource
	maxDepth int
}

// New creates a Balancer. health may be nil, in which case every agent is
// treated as healthy (a valid configuration per the external contract).
// maxDepth must be positive.
func New(depth DepthSource, health HealthSource, maxDepth int) *Balancer {
	if maxDepth <= 0 {
		panic("loadbalance: maxDepth must be positive")
	}
	return &Balancer{depth: depth, health: health, maxDepth: maxDepth}
}

// Load returns the agent's current queue depth.
func (b *Balancer) Load(roleID string) int {
	return b.depth.QueueDepth(roleID)
}

// Available reports whether the agent can accept more work right now:
// its queue depth is below the maximum and it is not unresponsive.
func (b *Balancer) Available(roleID string) bool {
	return b.availableAt(roleID, b.depth.QueueDepth(roleID))
}

func (b *Balancer) availableAt(roleID string, load int) bool {
	if load >= b.maxDepth {
		return false
	}
	if b.health != nil && b.health.Health(roleID) == model.HealthUnresponsive {
		return false
	}
	return true
}

// RankByAvailability filters roleIDs to the agents that can accept work and
// stable-sorts them by ascending effective load. Ties preserve input order,
// which callers pre-order by capability score to keep ties meaningful.
//
// reserved holds cycle-local provisional assignments made earlier in the
// same scheduling cycle; the effective load is reported depth plus the
// reservation, so two items in one cycle cannot both land on a now-full
// agent before the execution layer updates the real depth. Pass nil outside
// a cycle.
func (b *Balancer) RankByAvailability(roleIDs []string, reserved map[string]int) []string {
	type ranked struct {
		roleID string
		load   int
	}

	candidates := make([]ranked, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		load := b.depth.QueueDepth(roleID) + reserved[roleID]
		if !b.availableAt(roleID, load) {
			continue
		}
		candidates = append(candidates, ranked{roleID: roleID, load: load})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].load < candidates[j].load
	})

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.roleID
	}
	return out
}

// Report returns the observability view for the given agents. It is not used
// on the scheduling path.
func (b *Balancer) Report(roleIDs []string) map[string]AgentLoad {
	out := make(map[string]AgentLoad, len(roleIDs))
	for _, roleID := range roleIDs {
		load := b.depth.QueueDepth(roleID)
		out[roleID] = AgentLoad{
			QueueDepth:  load,
			Available:   b.availableAt(roleID, load),
			Utilization: float64(load) / float64(b.maxDepth),
		}
	}
	return out
}
