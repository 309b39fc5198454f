package loadbalance

import (
	"sync"

	"github.com/vk/dispatchgrid/internal/model"
)

// HealthMap is a mutex-guarded in-memory HealthSource. It stands in for a
// real monitor in tests and in single-process deployments where health is
// fed by an external watcher calling Set.
type HealthMap struct {
	mu     sync.RWMutex
	states map[string]model.Health
}

// NewHealthMap creates an empty HealthMap. Unknown agents report healthy.
func NewHealthMap() *HealthMap {
	return &HealthMap{states: make(map[string]model.Health)}
}

// Set records the health state for an agent.
func (h *HealthMap) Set(roleID string, state model.Health) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[roleID] = state
}

// Health implements HealthSource.
func (h *HealthMap) Health(roleID string) model.Health {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if state, ok := h.states[roleID]; ok {
		return state
	}
	return model.HealthHealthy
}
