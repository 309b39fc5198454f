package app

import (
	"sync"

	"github.com/vk/dispatchgrid/internal/model"
)

const defaultHistorySize = 256

// decisionHistory is a bounded, thread-safe record of recent scheduling
// decisions for the observe surface. Oldest entries are evicted first.
type decisionHistory struct {
	mu      sync.RWMutex
	entries []*model.SchedulingDecision
	limit   int
}

func newDecisionHistory(limit int) *decisionHistory {
	return &decisionHistory{limit: limit}
}

func (h *decisionHistory) Record(decisions ...*model.SchedulingDecision) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, decisions...)
	if overflow := len(h.entries) - h.limit; overflow > 0 {
		h.entries = append([]*model.SchedulingDecision(nil), h.entries[overflow:]...)
	}
}

// Recent returns the recorded decisions, newest last.
func (h *decisionHistory) Recent() []*model.SchedulingDecision {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*model.SchedulingDecision(nil), h.entries...)
}
