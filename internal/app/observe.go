package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// observeRouter builds the read-only observability routes: health, the load
// report, recent decisions, and workflow dependency graphs. None of the
// endpoints mutate scheduling state.
func (a *App) observeRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	r.Get("/load", a.handleLoadReport)
	r.Get("/decisions", a.handleDecisions)
	r.Get("/workflows/{workflowID}/graph", a.handleWorkflowGraph)
	return r
}

// startObserveServer serves the observe routes in the background and shuts
// the listener down when ctx ends.
func (a *App) startObserveServer(ctx context.Context, port int) {
	a.logger.Debug("Configuring observe server.")

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.observeRouter(),
	}

	go func() {
		a.logger.Info("🩺 Observe server starting.", "address", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Observe server failed.", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Observe server shutdown failed.", "error", err)
		}
	}()
}

func (a *App) handleLoadReport(w http.ResponseWriter, r *http.Request) {
	report := a.balancer.Report(a.matcher.Roster())
	writeJSON(w, http.StatusOK, report)
}

func (a *App) handleDecisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.history.Recent())
}

func (a *App) handleWorkflowGraph(w http.ResponseWriter, r *http.Request) {
	workflowID := chi.URLParam(r, "workflowID")
	graph, err := a.resolver.Graph(workflowID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
