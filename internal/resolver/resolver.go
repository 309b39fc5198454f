package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/dispatchgrid/internal/model"
	"github.com/vk/dispatchgrid/internal/workflow"
)

// ErrUnschedulable reports a malformed step graph: a dependency cycle or an
// edge to a step that does not exist. It is fatal for that workflow's
// scheduling, unlike the ordinary "dependencies not finished yet" condition.
var ErrUnschedulable = errors.New("resolver: workflow has a cycle or missing dependency")

// ReadyStep is one step whose dependencies are all satisfied, with a
// human-readable reason for audit output.
type ReadyStep struct {
	StepID string
	Reason string
}

// Resolver answers readiness and ordering questions for workflow step
// graphs. It is stateless beyond the injected store and safe for concurrent
// use.
type Resolver struct {
	store workflow.Store
}

// New creates a Resolver reading workflows from store.
func New(store workflow.Store) *Resolver {
	return &Resolver{store: store}
}

// StepReady reports whether the step exists, is pending, and has every
// dependency completed. A dependency ID that names no step in the workflow
// means not ready (fail-closed). An unknown workflow or step is not ready.
func (r *Resolver) StepReady(workflowID, stepID string) bool {
	wf, err := r.store.Workflow(workflowID)
	if err != nil {
		return false
	}
	return stepReadyIn(wf, wf.Step(stepID))
}

func stepReadyIn(wf *model.Workflow, step *model.Step) bool {
	if step == nil || step.Status != model.StepPending {
		return false
	}
	for _, depID := range step.DependsOn {
		dep := wf.Step(depID)
		if dep == nil || dep.Status != model.StepCompleted {
			return false
		}
	}
	return true
}

// Step returns the step definition, or an error when the workflow or step
// is unknown.
func (r *Resolver) Step(workflowID, stepID string) (*model.Step, error) {
	wf, err := r.store.Workflow(workflowID)
	if err != nil {
		return nil, err
	}
	step := wf.Step(stepID)
	if step == nil {
		return nil, fmt.Errorf("step %q in workflow %q: %w", stepID, workflowID, workflow.ErrNotFound)
	}
	return step, nil
}

// ReadySteps returns every pending step whose dependencies are all
// completed, sorted by step ID. Order carries no scheduling meaning; the
// caller re-sorts candidates by priority.
func (r *Resolver) ReadySteps(workflowID string) ([]ReadyStep, error) {
	wf, err := r.store.Workflow(workflowID)
	if err != nil {
		return nil, err
	}

	var out []ReadyStep
	for _, step := range wf.Steps {
		if !stepReadyIn(wf, step) {
			continue
		}
		reason := "no dependencies"
		if len(step.DependsOn) > 0 {
			reason = fmt.Sprintf("all dependencies completed: %s", strings.Join(step.DependsOn, ", "))
		}
		out = append(out, ReadyStep{StepID: step.ID, Reason: reason})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StepID < out[j].StepID })
	return out, nil
}

// ParallelGroups partitions the workflow's incomplete steps into execution
// waves. Wave 0 holds the steps whose dependencies are already satisfied by
// prior work (or that have none); each later wave holds the steps whose
// dependencies fall entirely inside earlier waves. Steps within one wave are
// mutually independent and may run in any order or fully in parallel.
//
// If a round admits no step while steps remain, the graph contains a cycle
// or a dependency on a missing step, and ErrUnschedulable is returned
// naming the stuck steps. No partial partition is returned in that case.
func (r *Resolver) ParallelGroups(workflowID string) ([][]string, error) {
	wf, err := r.store.Workflow(workflowID)
	if err != nil {
		return nil, err
	}

	// Completed steps seed the satisfied set; everything else remains to be
	// placed into a wave.
	satisfied := make(map[string]bool)
	remaining := make(map[string]*model.Step)
	for _, step := range wf.Steps {
		if step.Status == model.StepCompleted {
			satisfied[step.ID] = true
		} else {
			remaining[step.ID] = step
		}
	}

	var waves [][]string
	for len(remaining) > 0 {
		var wave []string
		for id, step := range remaining {
			ok := true
			for _, depID := range step.DependsOn {
				if !satisfied[depID] {
					ok = false
					break
				}
			}
			if ok {
				wave = append(wave, id)
			}
		}

		if len(wave) == 0 {
			stuck := make([]string, 0, len(remaining))
			for id := range remaining {
				stuck = append(stuck, id)
			}
			sort.Strings(stuck)
			return nil, fmt.Errorf("workflow %q: steps %s cannot be ordered: %w",
				workflowID, strings.Join(stuck, ", "), ErrUnschedulable)
		}

		sort.Strings(wave)
		for _, id := range wave {
			satisfied[id] = true
			delete(remaining, id)
		}
		waves = append(waves, wave)
	}

	return waves, nil
}

// Graph returns the raw dependency adjacency (step ID to its depends_on
// list) for visualization and audit. It is not used on the scheduling path.
func (r *Resolver) Graph(workflowID string) (map[string][]string, error) {
	wf, err := r.store.Workflow(workflowID)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(wf.Steps))
	for _, step := range wf.Steps {
		deps := make([]string, len(step.DependsOn))
		copy(deps, step.DependsOn)
		out[step.ID] = deps
	}
	return out, nil
}
