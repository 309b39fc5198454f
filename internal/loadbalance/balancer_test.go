package loadbalance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dispatchgrid/internal/model"
)

// depthMap is a trivial DepthSource for tests.
type depthMap map[string]int

func (d depthMap) QueueDepth(roleID string) int { return d[roleID] }

func TestAvailable(t *testing.T) {
	t.Run("below max and healthy", func(t *testing.T) {
		b := New(depthMap{"w1": 2}, nil, 5)
		assert.True(t, b.Available("w1"))
	})

	t.Run("at max queue depth", func(t *testing.T) {
		b := New(depthMap{"w1": 5}, nil, 5)
		assert.False(t, b.Available("w1"))
	})

	t.Run("unresponsive agent", func(t *testing.T) {
		health := NewHealthMap()
		health.Set("w1", model.HealthUnresponsive)
		b := New(depthMap{}, health, 5)
		assert.False(t, b.Available("w1"))
	})

	t.Run("degraded is still available", func(t *testing.T) {
		health := NewHealthMap()
		health.Set("w1", model.HealthDegraded)
		b := New(depthMap{}, health, 5)
		assert.True(t, b.Available("w1"))
	})

	t.Run("nil health source treats everyone as healthy", func(t *testing.T) {
		b := New(depthMap{}, nil, 5)
		assert.True(t, b.Available("anyone"))
	})

	t.Run("unknown agent has load zero", func(t *testing.T) {
		b := New(depthMap{}, nil, 5)
		assert.Equal(t, 0, b.Load("unknown"))
		assert.True(t, b.Available("unknown"))
	})
}

func TestAvailabilityMonotonicity(t *testing.T) {
	// An agent whose load crosses the cap disappears from ranking output on
	// the next call, all else equal.
	depths := depthMap{"w1": 4, "w2": 1}
	b := New(depths, nil, 5)

	require.Equal(t, []string{"w2", "w1"}, b.RankByAvailability([]string{"w1", "w2"}, nil))

	depths["w1"] = 5
	assert.Equal(t, []string{"w2"}, b.RankByAvailability([]string{"w1", "w2"}, nil))
}

func TestRankByAvailability(t *testing.T) {
	t.Run("ascending load", func(t *testing.T) {
		b := New(depthMap{"w1": 3, "w2": 7, "w3": 0}, nil, 10)
		got := b.RankByAvailability([]string{"w1", "w2", "w3"}, nil)
		assert.Equal(t, []string{"w3", "w1", "w2"}, got)
	})

	t.Run("ties preserve input order", func(t *testing.T) {
		b := New(depthMap{"a": 2, "b": 2, "c": 2}, nil, 10)
		got := b.RankByAvailability([]string{"b", "c", "a"}, nil)
		assert.Equal(t, []string{"b", "c", "a"}, got)
	})

	t.Run("filters full and unresponsive agents", func(t *testing.T) {
		health := NewHealthMap()
		health.Set("sick", model.HealthUnresponsive)
		b := New(depthMap{"full": 5, "ok": 1}, health, 5)
		got := b.RankByAvailability([]string{"full", "sick", "ok"}, nil)
		assert.Equal(t, []string{"ok"}, got)
	})

	t.Run("reservations add to effective load", func(t *testing.T) {
		b := New(depthMap{"w1": 1, "w2": 2}, nil, 5)

		// Without reservations w1 wins; with two provisional assignments it
		// ranks behind w2.
		assert.Equal(t, []string{"w1", "w2"}, b.RankByAvailability([]string{"w1", "w2"}, nil))
		got := b.RankByAvailability([]string{"w1", "w2"}, map[string]int{"w1": 2})
		assert.Equal(t, []string{"w2", "w1"}, got)
	})

	t.Run("reservations can exhaust an agent", func(t *testing.T) {
		b := New(depthMap{"w1": 4}, nil, 5)
		got := b.RankByAvailability([]string{"w1"}, map[string]int{"w1": 1})
		assert.Empty(t, got)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		b := New(depthMap{}, nil, 5)
		assert.Empty(t, b.RankByAvailability(nil, nil))
	})
}

func TestReport(t *testing.T) {
	health := NewHealthMap()
	health.Set("sick", model.HealthUnresponsive)
	b := New(depthMap{"w1": 2, "full": 4, "sick": 0}, health, 4)

	got := b.Report([]string{"w1", "full", "sick"})
	want := map[string]AgentLoad{
		"w1":   {QueueDepth: 2, Available: true, Utilization: 0.5},
		"full": {QueueDepth: 4, Available: false, Utilization: 1.0},
		"sick": {QueueDepth: 0, Available: false, Utilization: 0.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestNewPanicsOnBadMaxDepth(t *testing.T) {
	assert.Panics(t, func() { New(depthMap{}, nil, 0) })
}
