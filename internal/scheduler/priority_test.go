package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vk/dispatchgrid/internal/model"
)

func TestPriorityScore(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("base score without age", func(t *testing.T) {
		item := &model.WorkItem{Priority: model.PriorityHigh, CreatedAt: now}
		assert.InDelta(t, 1000.0, PriorityScore(item, now), 1e-9)
	})

	t.Run("age adds fractional hours", func(t *testing.T) {
		item := &model.WorkItem{Priority: model.PriorityMedium, CreatedAt: now.Add(-90 * time.Minute)}
		assert.InDelta(t, 101.5, PriorityScore(item, now), 1e-9)
	})

	t.Run("age bonus capped at 24 hours", func(t *testing.T) {
		item := &model.WorkItem{Priority: model.PriorityLow, CreatedAt: now.Add(-100 * time.Hour)}
		assert.InDelta(t, 25.0, PriorityScore(item, now), 1e-9)
	})

	t.Run("zero CreatedAt contributes no bonus", func(t *testing.T) {
		item := &model.WorkItem{Priority: model.PriorityCritical}
		assert.InDelta(t, 10000.0, PriorityScore(item, now), 1e-9)
	})

	t.Run("future CreatedAt contributes no bonus", func(t *testing.T) {
		item := &model.WorkItem{Priority: model.PriorityLow, CreatedAt: now.Add(time.Hour)}
		assert.InDelta(t, 1.0, PriorityScore(item, now), 1e-9)
	})
}

// TestPriorityDominance verifies the real contract behind the constants: for
// every adjacent tier pair, the maximum possible age bonus cannot close the
// gap, so a higher class always out-scores a lower one regardless of age.
func TestPriorityDominance(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tiers := []model.Priority{
		model.PriorityCritical,
		model.PriorityHigh,
		model.PriorityMedium,
		model.PriorityLow,
	}

	for i := 0; i < len(tiers)-1; i++ {
		higher, lower := tiers[i], tiers[i+1]

		// Worst case for the higher tier: brand new. Best case for the
		// lower tier: fully aged.
		fresh := &model.WorkItem{Priority: higher, CreatedAt: now}
		aged := &model.WorkItem{Priority: lower, CreatedAt: now.Add(-1000 * time.Hour)}

		assert.Greater(t, PriorityScore(fresh, now), PriorityScore(aged, now),
			"%s must dominate %s at any age", higher, lower)
	}
}

// TestGapSafety pins the structural property directly: the smallest gap
// between adjacent base scores strictly exceeds the maximum age bonus.
func TestGapSafety(t *testing.T) {
	tiers := []model.Priority{
		model.PriorityCritical,
		model.PriorityHigh,
		model.PriorityMedium,
		model.PriorityLow,
	}
	for i := 0; i < len(tiers)-1; i++ {
		gap := priorityBase[tiers[i]] - priorityBase[tiers[i+1]]
		assert.Greater(t, gap, maxAgeBonusHours,
			"gap between %s and %s must exceed the age cap", tiers[i], tiers[i+1])
	}
}
