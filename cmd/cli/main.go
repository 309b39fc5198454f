package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/dispatchgrid/internal/app"
	"github.com/vk/dispatchgrid/internal/cli"
	"github.com/vk/dispatchgrid/internal/ctxlog"
	"github.com/vk/dispatchgrid/internal/dispatch"
	"github.com/vk/dispatchgrid/internal/model"
)

// main is the entrypoint for the dispatchgrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(outW, "A critical startup error occurred: %v\n", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatchApp := app.NewApp(outW, appConfig, loggingBackend())
	return dispatchApp.Run(ctx, appConfig)
}

// loggingBackend is the demo execution collaborator: it logs each decision
// instead of invoking a real agent. Completion feeds back into the workflow
// store through the dispatcher, so successive cycles walk the dependency
// waves end to end.
func loggingBackend() dispatch.Executor {
	return dispatch.ExecutorFunc(func(ctx context.Context, decision *model.SchedulingDecision) error {
		ctxlog.FromContext(ctx).Info("Executing work item.",
			"workItemID", decision.WorkItemID,
			"assignedTo", decision.AssignedTo,
			"reason", decision.Reason)
		return nil
	})
}
