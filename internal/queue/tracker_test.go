package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Run("unknown agent has depth zero", func(t *testing.T) {
		tr := NewTracker()
		assert.Equal(t, 0, tr.QueueDepth("ghost"))
	})

	t.Run("increment and decrement", func(t *testing.T) {
		tr := NewTracker()
		assert.Equal(t, 1, tr.Increment("w1"))
		assert.Equal(t, 2, tr.Increment("w1"))
		assert.Equal(t, 1, tr.Decrement("w1"))
		assert.Equal(t, 1, tr.QueueDepth("w1"))
	})

	t.Run("decrement floors at zero", func(t *testing.T) {
		tr := NewTracker()
		assert.Equal(t, 0, tr.Decrement("w1"))
		assert.Equal(t, 0, tr.QueueDepth("w1"))
	})

	t.Run("seed sets an absolute depth", func(t *testing.T) {
		tr := NewTracker()
		tr.Seed("w1", 7)
		assert.Equal(t, 7, tr.QueueDepth("w1"))
	})

	t.Run("snapshot copies state", func(t *testing.T) {
		tr := NewTracker()
		tr.Seed("w1", 3)
		snap := tr.Snapshot()
		snap["w1"] = 99
		assert.Equal(t, 3, tr.QueueDepth("w1"))
	})
}

func TestTrackerConcurrency(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Increment("w1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, tr.QueueDepth("w1"))
}
