package app

import (
	"context"
	"errors"
	"time"

	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/model"
	"github.com/vk/dispatchgrid/internal/resolver"
)

// Run executes the main application logic based on the provided configuration.
// In --once mode it performs a single scheduling cycle; otherwise it loops on
// the configured interval until the context ends or every workflow has
// reached a terminal state.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.ObservePort > 0 {
		a.startObserveServer(ctx, appConfig.ObservePort)
	}

	interval := a.deployment.Settings.CycleInterval
	if appConfig.CycleInterval > 0 {
		interval = appConfig.CycleInterval
	}

	a.logger.Info("🚀 Scheduling loop starting.",
		"workflows", len(a.deployment.Workflows),
		"agents", len(a.deployment.Agents),
		"interval", interval,
		"once", appConfig.Once)

	for {
		done, err := a.runCycle(ctx)
		if err != nil {
			return err
		}
		if done || appConfig.Once {
			break
		}

		select {
		case <-ctx.Done():
			a.logger.Warn("Scheduling loop canceled.")
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	a.logger.Info("🏁 Scheduling loop finished.")
	return nil
}

// runCycle performs one scheduling pass plus dispatch, and reports whether
// all workflows have reached a terminal state.
func (a *App) runCycle(ctx context.Context) (bool, error) {
	active := a.store.ActiveWorkflowIDs()
	if len(active) == 0 {
		a.logger.Info("No active workflows remain.")
		return true, nil
	}

	result := a.sched.RunCycle(ctx, active)
	a.history.Record(result.Decisions...)

	for workflowID, err := range result.Faults {
		if errors.Is(err, resolver.ErrUnschedulable) {
			// A malformed graph never becomes schedulable; fail the workflow
			// so it stops being enumerated, leaving the others untouched.
			a.logger.Error("Workflow failed structural validation.", "workflowID", workflowID, "error", err)
			if serr := a.store.SetWorkflowStatus(workflowID, model.WorkflowFailed); serr != nil {
				a.logger.Error("Failed to mark workflow failed.", "workflowID", workflowID, "error", serr)
			}
			continue
		}
		a.logger.Error("Workflow skipped this cycle.", "workflowID", workflowID, "error", err)
	}

	for _, unplaced := range result.Unplaced {
		a.logger.Warn("Work item not placed this cycle.",
			"workflowID", unplaced.WorkflowID, "stepID", unplaced.StepID, "reason", unplaced.Err)
	}

	if len(result.Decisions) > 0 {
		a.dispatcher.Dispatch(ctx, result.Decisions)
	}

	return a.finalizeWorkflows(), nil
}

// finalizeWorkflows settles workflows that can no longer change state and
// reports whether any active workflow remains. A workflow completes only
// when every step completed; one whose remaining steps are all blocked
// behind a failure is failed rather than left spinning forever.
func (a *App) finalizeWorkflows() bool {
	remaining := false
	for _, id := range a.store.ActiveWorkflowIDs() {
		wf, err := a.store.Workflow(id)
		if err != nil {
			continue
		}
		switch {
		case workflowSucceeded(wf):
			a.logger.Info("Workflow completed.", "workflowID", id)
			if err := a.store.SetWorkflowStatus(id, model.WorkflowCompleted); err != nil {
				a.logger.Error("Failed to mark workflow completed.", "workflowID", id, "error", err)
			}
		case workflowStuck(wf):
			a.logger.Error("Workflow cannot make further progress after step failure.",
				"workflowID", id, "failedSteps", failedStepIDs(wf))
			if err := a.store.SetWorkflowStatus(id, model.WorkflowFailed); err != nil {
				a.logger.Error("Failed to mark workflow failed.", "workflowID", id, "error", err)
			}
		default:
			remaining = true
		}
	}
	return !remaining
}

// workflowSucceeded reports whether every step reached StepCompleted.
func workflowSucceeded(wf *model.Workflow) bool {
	for _, step := range wf.Steps {
		if step.Status != model.StepCompleted {
			return false
		}
	}
	return true
}

// workflowStuck reports whether no step can ever run again: nothing is in
// flight and every pending step transitively depends on a failed step.
func workflowStuck(wf *model.Workflow) bool {
	blocked := make(map[string]bool)
	for _, step := range wf.Steps {
		switch step.Status {
		case model.StepScheduled, model.StepRunning:
			return false
		case model.StepFailed:
			blocked[step.ID] = true
		}
	}
	if len(blocked) == 0 {
		return false
	}

	// Failure propagates to dependents until a fixed point.
	for changed := true; changed; {
		changed = false
		for _, step := range wf.Steps {
			if blocked[step.ID] {
				continue
			}
			for _, depID := range step.DependsOn {
				if blocked[depID] {
					blocked[step.ID] = true
					changed = true
					break
				}
			}
		}
	}

	for _, step := range wf.Steps {
		if step.Status == model.StepPending && !blocked[step.ID] {
			return false
		}
	}
	return true
}

func failedStepIDs(wf *model.Workflow) []string {
	var out []string
	for _, step := range wf.Steps {
		if step.Status == model.StepFailed {
			out = append(out, step.ID)
		}
	}
	return out
}
