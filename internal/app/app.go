package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
	engine   *container.Engine

	defaultBuildMethod string
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the workflow into the format-agnostic model first.
	cfgModel, err := loader.Load(ctx, appConfig.WorkflowPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Workflow configuration loaded into unified model.")

	// Create and populate the registry with the compiled-in plugins.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All plugin modules registered.", "count", len(modules))

	return &App{
		outW:               outW,
		logger:             logger,
		registry:           reg,
		config:             cfgModel,
		engine:             container.New(appConfig.ContainerTool),
		defaultBuildMethod: appConfig.DefaultBuildMethod,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
