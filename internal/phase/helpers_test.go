package phase

import (
	"context"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// fakePlugin adapts a bare function to the plugin capability.
type fakePlugin struct {
	run func(ctx context.Context) (any, error)
}

func (f *fakePlugin) Run(ctx context.Context) (any, error) {
	return f.run(ctx)
}

// counters tracks how often a fake plugin was instantiated and run, so tests
// can assert that aborted phases never touch later plugins.
type counters struct {
	instantiated int
	ran          int
}

// fakeDescriptor registers a plugin whose Run calls fn, bumping the counters
// on instantiation and invocation.
func fakeDescriptor(key string, cat registry.Category, c *counters, fn func(ctx context.Context) (any, error)) *registry.Descriptor {
	return &registry.Descriptor{
		Key:          key,
		Category:     cat,
		AcceptsExtra: true,
		New: func(_ *container.Engine, w *workflow.Context, args map[string]any) (registry.Plugin, error) {
			if c != nil {
				c.instantiated++
			}
			return &fakePlugin{run: func(ctx context.Context) (any, error) {
				if c != nil {
					c.ran++
				}
				return fn(ctx)
			}}, nil
		},
	}
}

func request(name string) *config.PluginRequest {
	return &config.PluginRequest{Name: name}
}
