// Package presleep provides the pre_sleep pre-build plugin. It sleeps for a
// configured number of seconds and is only intended for debugging phase
// behavior.
package presleep

import (
	"context"
	"time"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/phase"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	seconds float64
}

func newPlugin(_ *container.Engine, _ *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{seconds: 60}
	switch v := args["seconds"].(type) {
	case int64:
		p.seconds = float64(v)
	case float64:
		p.seconds = v
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	select {
	case <-time.After(time.Duration(p.seconds * float64(time.Second))):
		return nil, nil
	case <-ctx.Done():
		return nil, phase.ErrBuildCanceled
	}
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "pre_sleep",
		Category: registry.PreBuild,
		Params:   []string{"seconds"},
		New:      newPlugin,
	})
}
