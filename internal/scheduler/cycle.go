package scheduler

import (
	"context"
	"sort"

	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/model"
)

// UnplacedItem records a candidate that could not be placed this cycle,
// with the sentinel outcome explaining why.
type UnplacedItem struct {
	WorkflowID string
	StepID     string
	Err        error
}

// CycleResult is the outcome of one scheduling cycle.
type CycleResult struct {
	// Decisions, in the order they were made (descending priority score).
	Decisions []*model.SchedulingDecision

	// Unplaced lists candidates skipped for per-item reasons (no qualified
	// agent, everyone overloaded). They will be reconsidered next cycle.
	Unplaced []UnplacedItem

	// Faults maps workflow ID to the structural error that excluded it from
	// this cycle (cycle or missing dependency). Other workflows proceed.
	Faults map[string]error
}

// candidate is one ready step with its score pinned at cycle start.
type candidate struct {
	workflowID string
	step       *model.Step
	score      float64
}

// RunCycle performs one scheduling pass over the given workflows: gather
// every ready step, score once against a single clock read, place in
// strictly descending score order, reserving one queue slot per accepted
// decision so later candidates in the same cycle see the provisional load.
//
// Per-item failures never abort the cycle; a structural graph fault excludes
// only its own workflow. The reservations map is cycle-local and discarded
// on return; the execution layer owns the durable queue accounting.
func (s *Scheduler) RunCycle(ctx context.Context, workflowIDs []string) *CycleResult {
	logger := ctxlog.FromContext(ctx)
	result := &CycleResult{Faults: make(map[string]error)}

	now := s.now()
	var candidates []candidate
	for _, workflowID := range workflowIDs {
		// Structural validation comes first: a workflow can have ready steps
		// today and still carry a cycle further down that would strand them.
		// Checking the whole partition here keeps the fault report per
		// workflow instead of surfacing mid-dispatch.
		if _, err := s.resolver.ParallelGroups(workflowID); err != nil {
			logger.Error("Workflow excluded from cycle.", "workflowID", workflowID, "error", err)
			result.Faults[workflowID] = err
			continue
		}

		ready, err := s.resolver.ReadySteps(workflowID)
		if err != nil {
			result.Faults[workflowID] = err
			continue
		}

		for _, rs := range ready {
			step, err := s.resolver.Step(workflowID, rs.StepID)
			if err != nil {
				continue
			}
			item := StepWorkItem(workflowID, step)
			candidates = append(candidates, candidate{
				workflowID: workflowID,
				step:       step,
				score:      PriorityScore(item, now),
			})
		}
	}

	// Scores are computed once per cycle against one clock read, so the sort
	// is a consistent total order free of clock skew between comparisons.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if !candidates[i].step.CreatedAt.Equal(candidates[j].step.CreatedAt) {
			return candidates[i].step.CreatedAt.Before(candidates[j].step.CreatedAt)
		}
		if candidates[i].workflowID != candidates[j].workflowID {
			return candidates[i].workflowID < candidates[j].workflowID
		}
		return candidates[i].step.ID < candidates[j].step.ID
	})

	reserved := make(map[string]int)
	for _, c := range candidates {
		if ctx.Err() != nil {
			logger.Warn("Cycle interrupted by context cancellation.", "placed", len(result.Decisions))
			break
		}

		item := StepWorkItem(c.workflowID, c.step)
		decision, err := s.ScheduleWorkItem(item, c.step.TargetLevel, reserved)
		if err != nil {
			logger.Debug("Candidate not placed.", "workflowID", c.workflowID, "stepID", c.step.ID, "reason", err)
			result.Unplaced = append(result.Unplaced, UnplacedItem{
				WorkflowID: c.workflowID,
				StepID:     c.step.ID,
				Err:        err,
			})
			continue
		}

		decision.PriorityScore = c.score
		reserved[decision.AssignedTo]++
		result.Decisions = append(result.Decisions, decision)
		logger.Info("Scheduled work item.",
			"workItemID", decision.WorkItemID,
			"assignedTo", decision.AssignedTo,
			"score", decision.PriorityScore)
	}

	return result
}
