package workflow

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vk/dispatchgrid/internal/model"
)

// MemStore is a thread-safe in-memory Store. Workflows are added once and
// mutated only through the status setters.
type MemStore struct {
	mu        sync.RWMutex
	workflows map[string]*model.Workflow
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{workflows: make(map[string]*model.Workflow)}
}

// Add registers a workflow. The ID must be unused. A workflow with an empty
// status is stored as active.
func (s *MemStore) Add(wf *model.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workflows[wf.ID]; exists {
		return fmt.Errorf("workflow %q already exists", wf.ID)
	}
	if wf.Status == "" {
		wf.Status = model.WorkflowActive
	}
	s.workflows[wf.ID] = wf
	return nil
}

// Workflow implements Store. It returns a snapshot: step structs are copied
// so readers never observe a half-applied status write from the dispatcher.
// The requirement slices are shared and treated as immutable after load.
func (s *MemStore) Workflow(id string) (*model.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wf, ok := s.workflows[id]
	if !ok {
		return nil, fmt.Errorf("workflow %q: %w", id, ErrNotFound)
	}

	snapshot := &model.Workflow{
		ID:     wf.ID,
		Status: wf.Status,
		Steps:  make([]*model.Step, len(wf.Steps)),
	}
	for i, step := range wf.Steps {
		copied := *step
		snapshot.Steps[i] = &copied
	}
	return snapshot, nil
}

// ActiveWorkflowIDs implements Store.
func (s *MemStore) ActiveWorkflowIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for id, wf := range s.workflows {
		if wf.Status == model.WorkflowActive {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// SetStepStatus implements Store.
func (s *MemStore) SetStepStatus(workflowID, stepID string, status model.StepStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return fmt.Errorf("workflow %q: %w", workflowID, ErrNotFound)
	}
	step := wf.Step(stepID)
	if step == nil {
		return stepError(workflowID, stepID)
	}
	step.Status = status
	return nil
}

// ClaimStep implements Store.
func (s *MemStore) ClaimStep(workflowID, stepID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return false, fmt.Errorf("workflow %q: %w", workflowID, ErrNotFound)
	}
	step := wf.Step(stepID)
	if step == nil {
		return false, stepError(workflowID, stepID)
	}
	if wf.Status != model.WorkflowActive || step.Status != model.StepPending {
		return false, nil
	}
	step.Status = model.StepScheduled
	return true, nil
}

// SetWorkflowStatus implements Store.
func (s *MemStore) SetWorkflowStatus(workflowID string, status model.WorkflowStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows[workflowID]
	if !ok {
		return fmt.Errorf("workflow %q: %w", workflowID, ErrNotFound)
	}
	wf.Status = status
	return nil
}
