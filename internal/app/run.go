package app

import (
	"context"
	"fmt"

	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/phase"
	"github.com/forgeci/reactor/internal/workflow"
)

// Run executes the whole build: the six phases in order over one shared
// workflow context. Exit plugins always run, even when an earlier phase
// failed; an exit-phase error never masks the earlier fatal error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger

	w := a.newWorkflow()
	logger.Info("Starting build.", "image", w.Image)

	fatalErr := a.runPhases(ctx, w)

	logger.Info("Running exit plugins.")
	_, exitErr := phase.NewExitRunner(a.registry, a.engine, w, a.config.Phases["exit"]).Run(ctx)
	if exitErr != nil {
		logger.Error("Exit phase failed.", "error", exitErr)
	}

	if fatalErr != nil {
		return fatalErr
	}
	if exitErr != nil {
		return exitErr
	}
	logger.Info("Build finished.", "image", w.Image, "image_id", w.ImageID)
	return nil
}

// runPhases drives the build up to and including the pre-publish phase,
// stopping at the first fatal error.
func (a *App) runPhases(ctx context.Context, w *workflow.Context) error {
	if requests := a.config.Phases["input"]; len(requests) > 0 {
		if _, err := phase.NewInputRunner(a.registry, a.engine, w, requests).Run(ctx); err != nil {
			return fmt.Errorf("input phase: %w", err)
		}
	}

	if _, err := phase.NewPreBuildRunner(a.registry, a.engine, w, a.config.Phases["prebuild"]).Run(ctx); err != nil {
		return fmt.Errorf("prebuild phase: %w", err)
	}

	result, err := phase.NewBuildStepRunner(a.registry, a.engine, w, a.config.Phases["buildstep"]).Run(ctx)
	if err != nil {
		return fmt.Errorf("buildstep phase: %w", err)
	}
	if result.IsFailed() {
		return fmt.Errorf("build failed: %s", result.FailReason)
	}

	if _, err := phase.NewPostBuildRunner(a.registry, a.engine, w, a.config.Phases["postbuild"]).Run(ctx); err != nil {
		return fmt.Errorf("postbuild phase: %w", err)
	}

	if _, err := phase.NewPrePublishRunner(a.registry, a.engine, w, a.config.Phases["prepublish"]).Run(ctx); err != nil {
		return fmt.Errorf("prepublish phase: %w", err)
	}

	return nil
}

// newWorkflow creates the shared build context from the loaded model.
func (a *App) newWorkflow() *workflow.Context {
	w := workflow.New()
	w.DefaultBuildMethod = a.defaultBuildMethod
	if b := a.config.Build; b != nil {
		w.Image = b.Image
		w.Source = workflow.Source{
			Path:           b.Source,
			DockerfilePath: b.Dockerfile,
			BuildMethod:    b.Method,
		}
	}
	return w
}
