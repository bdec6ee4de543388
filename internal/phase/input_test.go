package phase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

func autousableDescriptor(key string, usable bool, c *counters, fn func(ctx context.Context) (any, error)) *registry.Descriptor {
	d := fakeDescriptor(key, registry.Input, c, fn)
	d.AutoUsable = func() bool { return usable }
	return d
}

func TestInputAutoSelectsSingleUsablePlugin(t *testing.T) {
	reg := registry.New()
	reg.Register(autousableDescriptor("env", true, nil, func(context.Context) (any, error) {
		return map[string]any{"image": "app:latest"}, nil
	}))
	reg.Register(autousableDescriptor("path", false, nil, func(context.Context) (any, error) {
		return nil, nil
	}))

	w := workflow.New()
	results, err := NewInputRunner(reg, nil, w, []*config.PluginRequest{request(AutoInput)}).Run(context.Background())
	require.NoError(t, err)

	// The chosen plugin's entry is renamed to the literal request key.
	assert.Equal(t, []string{AutoInput}, results.Keys())
	v, ok := results.Get(AutoInput)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"image": "app:latest"}, v)

	_, ok = results.Get("env")
	assert.False(t, ok)
}

func TestInputAutoNoUsablePlugin(t *testing.T) {
	reg := registry.New()
	reg.Register(autousableDescriptor("path", false, nil, func(context.Context) (any, error) {
		return nil, nil
	}))

	w := workflow.New()
	_, err := NewInputRunner(reg, nil, w, []*config.PluginRequest{request(AutoInput)}).Run(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "no autousable input plugin, please specify the input explicitly", cfgErr.Reason)
}

func TestInputAutoAmbiguousSelection(t *testing.T) {
	var ran counters

	reg := registry.New()
	reg.Register(autousableDescriptor("env", true, &ran, func(context.Context) (any, error) {
		return nil, nil
	}))
	reg.Register(autousableDescriptor("osv3", true, &ran, func(context.Context) (any, error) {
		return nil, nil
	}))

	w := workflow.New()
	_, err := NewInputRunner(reg, nil, w, []*config.PluginRequest{request(AutoInput)}).Run(context.Background())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, `more than one usable plugin with "auto" input: env, osv3, please specify the input explicitly`, cfgErr.Reason)
	assert.Equal(t, 0, ran.ran)
}

func TestInputExplicitNameBypassesAutoSelection(t *testing.T) {
	reg := registry.New()
	reg.Register(autousableDescriptor("path", false, nil, func(context.Context) (any, error) {
		return map[string]any{"image": "from-path"}, nil
	}))

	w := workflow.New()
	results, err := NewInputRunner(reg, nil, w, []*config.PluginRequest{request("path")}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"path"}, results.Keys())
}

func TestInputAutoKeepsCallerRequestsIntact(t *testing.T) {
	reg := registry.New()
	reg.Register(autousableDescriptor("env", true, nil, func(context.Context) (any, error) {
		return nil, nil
	}))

	req := request(AutoInput)
	w := workflow.New()

	_, err := NewInputRunner(reg, nil, w, []*config.PluginRequest{req}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, AutoInput, req.Name)
}
