package scheduler

import (
	"time"

	"github.com/vk/dispatchgrid/internal/model"
)

// Base priority scores. The contract is the gap, not the literals: the
// maximum age bonus (maxAgeBonusHours) must stay strictly below the smallest
// gap between adjacent tiers, so an aged item can never out-score a younger
// item of a higher class.
var priorityBase = map[model.Priority]float64{
	model.PriorityCritical: 10000,
	model.PriorityHigh:     1000,
	model.PriorityMedium:   100,
	model.PriorityLow:      1,
}

// maxAgeBonusHours caps the aging bonus. Aging breaks ties within a tier in
// favor of older items and prevents starvation without ever promoting an
// item across tiers.
const maxAgeBonusHours = 24.0

// PriorityScore computes base[priority] + min(age_hours, 24) at the given
// instant. A zero CreatedAt contributes no bonus.
func PriorityScore(item *model.WorkItem, now time.Time) float64 {
	score := priorityBase[item.Priority]
	if item.CreatedAt.IsZero() {
		return score
	}
	age := now.Sub(item.CreatedAt).Hours()
	if age < 0 {
		age = 0
	}
	if age > maxAgeBonusHours {
		age = maxAgeBonusHours
	}
	return score + age
}
