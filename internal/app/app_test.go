package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeci/reactor/internal/build"
	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// stubLoader serves a pre-built model, bypassing the HCL layer.
type stubLoader struct {
	model *config.Model
	err   error
}

func (s *stubLoader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	return s.model, s.err
}

// trace records the order plugins ran in across all phases.
type trace struct {
	ran []string
}

// traceModule registers one fake plugin per phase, each appending its key to
// the shared trace when run.
type traceModule struct {
	trace      *trace
	buildErr   error
	exitErr    error
	failReason string
}

func (m *traceModule) Register(r *registry.Registry) {
	record := func(key string, cat registry.Category, fn func() (any, error)) {
		r.Register(&registry.Descriptor{
			Key:          key,
			Category:     cat,
			AcceptsExtra: true,
			New: func(_ *container.Engine, w *workflow.Context, _ map[string]any) (registry.Plugin, error) {
				return pluginFunc(func(context.Context) (any, error) {
					m.trace.ran = append(m.trace.ran, key)
					return fn()
				}), nil
			},
		})
	}

	record("fake_input", registry.Input, func() (any, error) { return map[string]any{"image": "app"}, nil })
	record("fake_prebuild", registry.PreBuild, func() (any, error) { return nil, nil })
	record("fake_build", registry.BuildStep, func() (any, error) {
		if m.buildErr != nil {
			return nil, m.buildErr
		}
		if m.failReason != "" {
			return build.NewFailedResult(m.failReason, nil), nil
		}
		return build.NewResult("sha256:deadbeef", nil), nil
	})
	record("fake_postbuild", registry.PostBuild, func() (any, error) { return nil, nil })
	record("fake_prepublish", registry.PrePublish, func() (any, error) { return nil, nil })
	record("fake_exit", registry.Exit, func() (any, error) { return nil, m.exitErr })
}

type pluginFunc func(ctx context.Context) (any, error)

func (f pluginFunc) Run(ctx context.Context) (any, error) { return f(ctx) }

func fullModel() *config.Model {
	return &config.Model{
		Build: &config.BuildSpec{Image: "app:latest", Method: "fake_build"},
		Phases: map[string][]*config.PluginRequest{
			"input":      {{Name: "fake_input"}},
			"prebuild":   {{Name: "fake_prebuild"}},
			"buildstep":  {{Name: "fake_build"}},
			"postbuild":  {{Name: "fake_postbuild"}},
			"prepublish": {{Name: "fake_prepublish"}},
			"exit":       {{Name: "fake_exit"}},
		},
	}
}

func testAppConfig() *Config {
	cfg, _ := NewConfig(Config{
		WorkflowPath:       "unused.hcl",
		LogFormat:          "text",
		LogLevel:           "error",
		ContainerTool:      "docker",
		DefaultBuildMethod: "fake_build",
	})
	return cfg
}

func TestRunExecutesPhasesInOrder(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{trace: tr}

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: fullModel()}, mod)

	err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"fake_input", "fake_prebuild", "fake_build",
		"fake_postbuild", "fake_prepublish", "fake_exit",
	}, tr.ran)
}

func TestRunSkipsInputPhaseWhenNotConfigured(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{trace: tr}

	model := fullModel()
	delete(model.Phases, "input")

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: model}, mod)

	require.NoError(t, a.Run(context.Background()))
	assert.NotContains(t, tr.ran, "fake_input")
	assert.Contains(t, tr.ran, "fake_build")
}

func TestRunExitPluginsRunAfterFatalFailure(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{trace: tr, buildErr: errors.New("toolchain exploded")}

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: fullModel()}, mod)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buildstep phase")

	// The build died, so the publishing phases never ran, but exit did.
	assert.NotContains(t, tr.ran, "fake_postbuild")
	assert.NotContains(t, tr.ran, "fake_prepublish")
	assert.Contains(t, tr.ran, "fake_exit")
}

func TestRunFailedBuildResultIsFatal(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{trace: tr, failReason: "image not built"}

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: fullModel()}, mod)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed: image not built")
	assert.NotContains(t, tr.ran, "fake_postbuild")
	assert.Contains(t, tr.ran, "fake_exit")
}

func TestRunBuildErrorNotMaskedByExitError(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{
		trace:    tr,
		buildErr: errors.New("toolchain exploded"),
		exitErr:  errors.New("cleanup also failed"),
	}

	model := fullModel()
	model.Phases["exit"] = []*config.PluginRequest{
		{Name: "fake_exit", AllowedToFail: registry.Bool(false)},
	}

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: model}, mod)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toolchain exploded")
}

func TestRunExitErrorAloneIsReturned(t *testing.T) {
	tr := &trace{}
	mod := &traceModule{trace: tr, exitErr: errors.New("cleanup failed")}

	model := fullModel()
	model.Phases["exit"] = []*config.PluginRequest{
		{Name: "fake_exit", AllowedToFail: registry.Bool(false)},
	}

	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: model}, mod)

	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleanup failed")
}

func TestNewAppPanicsOnLoaderFailure(t *testing.T) {
	var out bytes.Buffer
	assert.Panics(t, func() {
		NewApp(&out, testAppConfig(), &stubLoader{err: errors.New("parse error")})
	})
}

func TestNewAppRegistersCoreModulesByDefault(t *testing.T) {
	var out bytes.Buffer
	a := NewApp(&out, testAppConfig(), &stubLoader{model: fullModel()})

	inputs := a.Registry().Lookup(registry.Input)
	assert.Contains(t, inputs, "env")
	assert.Contains(t, inputs, "path")

	steps := a.Registry().Lookup(registry.BuildStep)
	assert.Contains(t, steps, "docker_api")
	assert.Contains(t, steps, "oc_dockerbuild")

	exits := a.Registry().Lookup(registry.Exit)
	assert.Contains(t, exits, "remove_built_image")
	assert.Contains(t, exits, "notify")
}

func TestNewConfigRequiresWorkflowPath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{WorkflowPath: "w.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "w.hcl", cfg.WorkflowPath)
}
