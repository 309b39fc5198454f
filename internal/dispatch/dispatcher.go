// Package dispatch hands a batch of scheduling decisions to an execution
// backend through a fixed-size worker pool. It is the boundary where
// decisions become side effects: the dispatcher owns step status transitions
// and queue-depth accounting, which the scheduling core deliberately never
// touches.
package dispatch

import (
	"context"
	"sync"

	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/model"
	"github.com/vk/dispatchgrid/internal/workflow"
)

// Executor is the external backend that actually performs the work: invoking
// the assigned agent and reporting the outcome.
type Executor interface {
	Execute(ctx context.Context, decision *model.SchedulingDecision) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, decision *model.SchedulingDecision) error

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, decision *model.SchedulingDecision) error {
	return f(ctx, decision)
}

// QueueAccountant is the durable queue-depth counter the dispatcher updates
// so future scheduling cycles see real load. queue.Tracker satisfies it.
type QueueAccountant interface {
	Increment(roleID string) int
	Decrement(roleID string) int
}

// Result summarizes one dispatched batch.
type Result struct {
	// Executed counts decisions the backend completed successfully.
	Executed int
	// Failed counts decisions the backend returned an error for.
	Failed int
	// Skipped counts stale decisions dropped at the pre-flight gate.
	Skipped int
}

// Dispatcher fans a batch of decisions out over a bounded worker pool.
type Dispatcher struct {
	store   workflow.Store
	queue   QueueAccountant
	backend Executor
	workers int
}

// New creates a Dispatcher with the given concurrency bound. The bound is
// independent of per-agent queue limits: it caps simultaneous backend
// invocations for the whole process.
func New(store workflow.Store, queue QueueAccountant, backend Executor, workers int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{store: store, queue: queue, backend: backend, workers: workers}
}

// Dispatch executes the batch and blocks until every decision has been
// executed, failed, or skipped. Decisions reference a workflow snapshot that
// may have gone stale since the cycle ran, so each one is re-validated
// against live state immediately before execution; a workflow paused or a
// step claimed in the meantime makes the decision a no-op.
func (d *Dispatcher) Dispatch(ctx context.Context, decisions []*model.SchedulingDecision) *Result {
	logger := ctxlog.FromContext(ctx)

	work := make(chan *model.SchedulingDecision, len(decisions))
	for _, decision := range decisions {
		work <- decision
	}
	close(work)

	result := &Result{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(d.workers)
	for i := 0; i < d.workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			for decision := range work {
				outcome := d.run(ctx, decision, workerID)
				mu.Lock()
				switch outcome {
				case outcomeExecuted:
					result.Executed++
				case outcomeFailed:
					result.Failed++
				case outcomeSkipped:
					result.Skipped++
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	logger.Info("Dispatch batch finished.",
		"executed", result.Executed, "failed", result.Failed, "skipped", result.Skipped)
	return result
}

type outcome int

const (
	outcomeExecuted outcome = iota
	outcomeFailed
	outcomeSkipped
)

// run executes a single decision: claim, account, invoke, record.
func (d *Dispatcher) run(ctx context.Context, decision *model.SchedulingDecision, workerID int) outcome {
	logger := ctxlog.FromContext(ctx).With(
		"workerID", workerID,
		"workItemID", decision.WorkItemID,
		"assignedTo", decision.AssignedTo,
	)

	if ctx.Err() != nil {
		logger.Warn("Context canceled, decision dropped.")
		return outcomeSkipped
	}

	item := decision.WorkItem
	fromStep := item != nil && item.WorkflowID != ""

	if fromStep {
		claimed, err := d.store.ClaimStep(item.WorkflowID, item.StepID)
		if err != nil || !claimed {
			// The workflow was paused or the step changed state between the
			// scheduling cycle and now. The dispatcher is the last gate
			// before irreversible action, so a stale decision is a no-op.
			logger.Warn("Decision stale at dispatch, skipping.", "error", err)
			return outcomeSkipped
		}
	}

	d.queue.Increment(decision.AssignedTo)
	defer d.queue.Decrement(decision.AssignedTo)

	if fromStep {
		if err := d.store.SetStepStatus(item.WorkflowID, item.StepID, model.StepRunning); err != nil {
			logger.Error("Failed to mark step running.", "error", err)
			return outcomeFailed
		}
	}

	if err := d.backend.Execute(ctx, decision); err != nil {
		logger.Error("Backend execution failed.", "error", err)
		if fromStep {
			if serr := d.store.SetStepStatus(item.WorkflowID, item.StepID, model.StepFailed); serr != nil {
				logger.Error("Failed to mark step failed.", "error", serr)
			}
		}
		return outcomeFailed
	}

	if fromStep {
		if err := d.store.SetStepStatus(item.WorkflowID, item.StepID, model.StepCompleted); err != nil {
			logger.Error("Failed to mark step completed.", "error", err)
			return outcomeFailed
		}
	}

	logger.Debug("Decision executed.")
	return outcomeExecuted
}
