package phase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

func TestResolveUnknownRequiredPluginAbortsBeforeExecution(t *testing.T) {
	var known counters

	reg := registry.New()
	reg.Register(fakeDescriptor("known", registry.PreBuild, &known, func(context.Context) (any, error) {
		return nil, nil
	}))

	w := workflow.New()
	requests := []*config.PluginRequest{request("missing"), request("known")}

	_, err := NewPreBuildRunner(reg, nil, w, requests).Run(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "no such plugin: 'missing', did you set the correct plugin type?", cfgErr.Reason)

	// Resolution failed, so nothing ran, not even the resolvable plugin.
	assert.Equal(t, 0, known.ran)
	assert.True(t, w.PluginFailed)
	assert.Contains(t, w.PluginErrors, "missing")
}

func TestResolveUnknownOptionalPluginIsOmitted(t *testing.T) {
	var known counters

	reg := registry.New()
	reg.Register(fakeDescriptor("known", registry.PreBuild, &known, func(context.Context) (any, error) {
		return "ran", nil
	}))

	w := workflow.New()
	requests := []*config.PluginRequest{
		{Name: "missing", Required: registry.Bool(false)},
		request("known"),
	}

	results, err := NewPreBuildRunner(reg, nil, w, requests).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, known.ran)
	assert.Equal(t, []string{"known"}, results.Keys())
	assert.False(t, w.PluginFailed)
}

func TestResolveIgnoresPluginsFromOtherCategories(t *testing.T) {
	reg := registry.New()
	reg.Register(fakeDescriptor("cleanup", registry.Exit, nil, func(context.Context) (any, error) {
		return nil, nil
	}))

	w := workflow.New()
	_, err := NewPreBuildRunner(reg, nil, w, []*config.PluginRequest{request("cleanup")}).Run(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolvePreparesArguments(t *testing.T) {
	var got map[string]any

	d := &registry.Descriptor{
		Key:      "inspect",
		Category: registry.PreBuild,
		Params:   []string{"image"},
		New: func(_ *container.Engine, _ *workflow.Context, args map[string]any) (registry.Plugin, error) {
			got = args
			return &fakePlugin{run: func(context.Context) (any, error) { return nil, nil }}, nil
		},
	}

	reg := registry.New()
	reg.Register(d)

	w := workflow.New()
	w.ImageID = "sha256:def456"
	requests := []*config.PluginRequest{{
		Name: "inspect",
		Args: map[string]any{"image": "BUILT_IMAGE_ID", "stray": "x"},
	}}

	_, err := NewPreBuildRunner(reg, nil, w, requests).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"image": "sha256:def456"}, got)
}

func TestPluginFailedErrorUnwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := &PluginFailedError{Causes: []Cause{{Plugin: "p", Err: inner}}}
	assert.ErrorIs(t, err, inner)
}
