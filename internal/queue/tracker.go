// Package queue tracks per-agent queue depth: the count of work assigned to
// an agent that has not yet completed. The tracker is the single writer-side
// collaborator shared between the load balancer (which reads depths when
// ranking) and the dispatcher (which increments on hand-off and decrements
// on completion).
package queue

import "sync"

// Tracker is a thread-safe role-to-depth counter. It implements
// loadbalance.DepthSource.
type Tracker struct {
	mu     sync.RWMutex
	depths map[string]int
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{depths: make(map[string]int)}
}

// Seed sets an agent's depth to an absolute value. Used when loading a
// roster whose agents already carry in-flight work.
func (t *Tracker) Seed(roleID string, depth int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depths[roleID] = depth
}

// Increment adds one to the agent's depth and returns the new value.
func (t *Tracker) Increment(roleID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.depths[roleID]++
	return t.depths[roleID]
}

// Decrement subtracts one from the agent's depth, flooring at zero.
func (t *Tracker) Decrement(roleID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.depths[roleID] > 0 {
		t.depths[roleID]--
	}
	return t.depths[roleID]
}

// QueueDepth implements loadbalance.DepthSource. Unknown agents have depth 0.
func (t *Tracker) QueueDepth(roleID string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.depths[roleID]
}

// Snapshot returns a copy of all non-zero depths.
func (t *Tracker) Snapshot() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]int, len(t.depths))
	for roleID, depth := range t.depths {
		out[roleID] = depth
	}
	return out
}
