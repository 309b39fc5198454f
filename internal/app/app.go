// Package app wires the scheduling components together from a loaded
// deployment and drives the cycle loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/dispatchgrid/internal/capability"
	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/dispatch"
	"github.com/vk/dispatchgrid/internal/hclcfg"
	"github.com/vk/dispatchgrid/internal/loadbalance"
	"github.com/vk/dispatchgrid/internal/queue"
	"github.com/vk/dispatchgrid/internal/resolver"
	"github.com/vk/dispatchgrid/internal/scheduler"
	"github.com/vk/dispatchgrid/internal/workflow"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	deployment *hclcfg.Deployment

	matcher    *capability.Matcher
	tracker    *queue.Tracker
	health     *loadbalance.HealthMap
	balancer   *loadbalance.Balancer
	store      *workflow.MemStore
	resolver   *resolver.Resolver
	sched      *scheduler.Scheduler
	dispatcher *dispatch.Dispatcher
	history    *decisionHistory
}

// NewApp is the constructor for the main application. It loads the
// deployment definition, registers the roster, and wires every component.
// backend is the execution collaborator invoked for each decision.
func NewApp(outW io.Writer, appConfig *Config, backend dispatch.Executor) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	deployment, err := hclcfg.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load deployment configuration: %w", err))
	}

	matcher := capability.NewMatcher(deployment.Taxonomy)
	tracker := queue.NewTracker()
	health := loadbalance.NewHealthMap()
	for _, agent := range deployment.Agents {
		matcher.RegisterAgent(agent.RoleID, agent.Level, agent.Capabilities, agent.Skills)
		if agent.QueueDepth > 0 {
			tracker.Seed(agent.RoleID, agent.QueueDepth)
		}
		health.Set(agent.RoleID, agent.Health)
	}
	logger.Debug("Agent roster registered.", "count", len(deployment.Agents))

	store := workflow.NewMemStore()
	for _, wf := range deployment.Workflows {
		if err := store.Add(wf); err != nil {
			panic(fmt.Errorf("failed to register workflow: %w", err))
		}
	}
	logger.Debug("Workflows registered.", "count", len(deployment.Workflows))

	balancer := loadbalance.New(tracker, health, deployment.Settings.MaxQueueDepth)
	res := resolver.New(store)
	sched := scheduler.New(matcher, balancer, res,
		scheduler.WithMaxAlternatives(deployment.Settings.MaxAlternatives))

	workers := deployment.Settings.Workers
	if appConfig.Workers > 0 {
		workers = appConfig.Workers
	}
	dispatcher := dispatch.New(store, tracker, backend, workers)

	return &App{
		outW:       outW,
		logger:     logger,
		deployment: deployment,
		matcher:    matcher,
		tracker:    tracker,
		health:     health,
		balancer:   balancer,
		store:      store,
		resolver:   res,
		sched:      sched,
		dispatcher: dispatcher,
		history:    newDecisionHistory(defaultHistorySize),
	}
}

// Scheduler returns the wired scheduler. This is primarily for testing.
func (a *App) Scheduler() *scheduler.Scheduler {
	return a.sched
}

// Store returns the workflow store. This is primarily for testing.
func (a *App) Store() *workflow.MemStore {
	return a.store
}
