// Package removeimage provides the remove_built_image exit plugin: it
// deletes the built image from local storage once the build is over.
package removeimage

import (
	"context"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	eng *container.Engine
	w   *workflow.Context
}

func newPlugin(eng *container.Engine, w *workflow.Context, _ map[string]any) (registry.Plugin, error) {
	return &plugin{eng: eng, w: w}, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", "remove_built_image")

	if p.w.ImageID == "" {
		logger.Debug("No built image, nothing to remove.")
		return nil, nil
	}
	if err := p.eng.Remove(ctx, p.w.ImageID); err != nil {
		return nil, err
	}
	logger.Info("Removed built image.", "image_id", p.w.ImageID)
	return p.w.ImageID, nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "remove_built_image",
		Category: registry.Exit,
		New:      newPlugin,
	})
}
