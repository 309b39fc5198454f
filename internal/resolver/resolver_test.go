package resolver

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dispatchgrid/internal/model"
	"github.com/vk/dispatchgrid/internal/workflow"
)

// buildStore creates a store holding one workflow whose steps are given as
// id -> depends_on.
func buildStore(t *testing.T, workflowID string, steps map[string][]string) *workflow.MemStore {
	t.Helper()
	wf := &model.Workflow{ID: workflowID}
	for id, deps := range steps {
		wf.Steps = append(wf.Steps, &model.Step{
			ID:        id,
			Status:    model.StepPending,
			DependsOn: deps,
		})
	}
	s := workflow.NewMemStore()
	require.NoError(t, s.Add(wf))
	return s
}

func TestStepReady(t *testing.T) {
	t.Run("no dependencies is ready", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"a": nil})
		r := New(s)
		assert.True(t, r.StepReady("wf", "a"))
	})

	t.Run("incomplete dependency blocks", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"a": nil, "b": {"a"}})
		r := New(s)
		assert.False(t, r.StepReady("wf", "b"))
	})

	t.Run("completed dependency unlocks", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"a": nil, "b": {"a"}})
		require.NoError(t, s.SetStepStatus("wf", "a", model.StepCompleted))
		r := New(s)
		assert.True(t, r.StepReady("wf", "b"))
	})

	t.Run("missing dependency fails closed", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"b": {"ghost"}})
		r := New(s)
		assert.False(t, r.StepReady("wf", "b"))
	})

	t.Run("non-pending step is not ready", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"a": nil})
		require.NoError(t, s.SetStepStatus("wf", "a", model.StepRunning))
		r := New(s)
		assert.False(t, r.StepReady("wf", "a"))
	})

	t.Run("unknown workflow or step", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{"a": nil})
		r := New(s)
		assert.False(t, r.StepReady("nope", "a"))
		assert.False(t, r.StepReady("wf", "nope"))
	})
}

func TestReadySteps(t *testing.T) {
	s := buildStore(t, "wf", map[string][]string{
		"a": nil,
		"b": nil,
		"c": {"a"},
	})
	require.NoError(t, s.SetStepStatus("wf", "a", model.StepCompleted))
	r := New(s)

	ready, err := r.ReadySteps("wf")
	require.NoError(t, err)

	ids := make([]string, len(ready))
	for i, rs := range ready {
		ids[i] = rs.StepID
	}
	assert.Equal(t, []string{"b", "c"}, ids)

	// Reasons name the satisfied dependencies.
	assert.Equal(t, "no dependencies", ready[0].Reason)
	assert.Contains(t, ready[1].Reason, "a")
}

func TestParallelGroups(t *testing.T) {
	t.Run("fan-in fan-out partition", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{
			"1": nil,
			"2": nil,
			"3": nil,
			"4": {"2", "3"},
			"5": {"4"},
		})
		r := New(s)

		waves, err := r.ParallelGroups("wf")
		require.NoError(t, err)
		want := [][]string{{"1", "2", "3"}, {"4"}, {"5"}}
		if diff := cmp.Diff(want, waves); diff != "" {
			t.Errorf("waves mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("partition covers every step exactly once with deps in earlier waves", func(t *testing.T) {
		graph := map[string][]string{
			"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}, "e": {"a", "d"}, "f": nil,
		}
		s := buildStore(t, "wf", graph)
		r := New(s)

		waves, err := r.ParallelGroups("wf")
		require.NoError(t, err)

		seen := make(map[string]int)
		earlier := make(map[string]bool)
		for _, wave := range waves {
			for _, id := range wave {
				seen[id]++
				for _, dep := range graph[id] {
					assert.True(t, earlier[dep], "step %s scheduled before its dependency %s", id, dep)
				}
			}
			for _, id := range wave {
				earlier[id] = true
			}
		}
		assert.Len(t, seen, len(graph))
		for id, count := range seen {
			assert.Equal(t, 1, count, "step %s appears %d times", id, count)
		}
	})

	t.Run("completed steps seed wave zero", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{
			"a": nil,
			"b": {"a"},
			"c": {"b"},
		})
		require.NoError(t, s.SetStepStatus("wf", "a", model.StepCompleted))
		r := New(s)

		waves, err := r.ParallelGroups("wf")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"b"}, {"c"}}, waves)
	})

	t.Run("two-node cycle is a structural error", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{
			"a": {"b"},
			"b": {"a"},
		})
		r := New(s)

		_, err := r.ParallelGroups("wf")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnschedulable)
		assert.Contains(t, err.Error(), "a")
		assert.Contains(t, err.Error(), "b")
	})

	t.Run("cycle downstream of valid steps still errors", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{
			"ok": nil,
			"x":  {"ok", "y"},
			"y":  {"x"},
		})
		r := New(s)

		_, err := r.ParallelGroups("wf")
		assert.ErrorIs(t, err, ErrUnschedulable)
	})

	t.Run("missing dependency is a structural error", func(t *testing.T) {
		s := buildStore(t, "wf", map[string][]string{
			"a": {"ghost"},
		})
		r := New(s)

		_, err := r.ParallelGroups("wf")
		assert.ErrorIs(t, err, ErrUnschedulable)
	})

	t.Run("empty workflow has no waves", func(t *testing.T) {
		s := buildStore(t, "wf", nil)
		r := New(s)
		waves, err := r.ParallelGroups("wf")
		require.NoError(t, err)
		assert.Empty(t, waves)
	})
}

func TestGraph(t *testing.T) {
	s := buildStore(t, "wf", map[string][]string{
		"a": nil,
		"b": {"a"},
	})
	r := New(s)

	graph, err := r.Graph("wf")
	require.NoError(t, err)
	want := map[string][]string{"a": {}, "b": {"a"}}
	if diff := cmp.Diff(want, graph); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}

	_, err = r.Graph("nope")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}

func TestStepAccessor(t *testing.T) {
	s := buildStore(t, "wf", map[string][]string{"a": nil})
	r := New(s)

	step, err := r.Step("wf", "a")
	require.NoError(t, err)
	assert.Equal(t, "a", step.ID)

	_, err = r.Step("wf", "nope")
	assert.ErrorIs(t, err, workflow.ErrNotFound)
}
