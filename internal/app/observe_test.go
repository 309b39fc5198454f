package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/dispatchgrid/internal/loadbalance"
	"github.com/vk/dispatchgrid/internal/model"
)

func TestObserveRouter(t *testing.T) {
	testApp, appConfig, _, _ := setupAppTest(t, `
agent "dev" {
  level        = "worker"
  capabilities = ["backend"]
  queue_depth  = 2
}

agent "idle" {
  level = "worker"
}

workflow "release" {
  step "build" {
    capabilities = ["backend"]
  }
  step "verify" {
    depends_on = ["build"]
  }
}
`)
	appConfig.Once = true
	require.NoError(t, testApp.Run(context.Background(), appConfig))

	server := httptest.NewServer(testApp.observeRouter())
	t.Cleanup(server.Close)

	get := func(t *testing.T, path string) *http.Response {
		t.Helper()
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("healthz", func(t *testing.T) {
		resp := get(t, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("load report covers the whole roster", func(t *testing.T) {
		resp := get(t, "/load")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var report map[string]loadbalance.AgentLoad
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		require.Contains(t, report, "dev")
		require.Contains(t, report, "idle")
		assert.True(t, report["idle"].Available)
		assert.Equal(t, 0, report["idle"].QueueDepth)
	})

	t.Run("decisions list the cycle's placements", func(t *testing.T) {
		resp := get(t, "/decisions")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var decisions []model.SchedulingDecision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decisions))
		require.Len(t, decisions, 1)
		assert.Equal(t, "release/build", decisions[0].WorkItemID)
		assert.Equal(t, "dev", decisions[0].AssignedTo)
		assert.NotEmpty(t, decisions[0].ID)
	})

	t.Run("workflow graph adjacency", func(t *testing.T) {
		resp := get(t, "/workflows/release/graph")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var graph map[string][]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&graph))
		assert.Empty(t, graph["build"])
		assert.Equal(t, []string{"build"}, graph["verify"])
	})

	t.Run("unknown workflow is 404", func(t *testing.T) {
		resp := get(t, "/workflows/ghost/graph")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
