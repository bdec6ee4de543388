// Package exportimage provides the export_image pre-publish plugin: it
// saves the built image to a tar archive and reports the archive path and
// size.
package exportimage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	eng  *container.Engine
	w    *workflow.Context
	path string
}

func newPlugin(eng *container.Engine, w *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{eng: eng, w: w}
	if v, ok := args["path"].(string); ok && v != "" {
		p.path = v
	} else {
		p.path = filepath.Join(w.Source.Path, "image.tar")
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", "export_image")

	if p.w.ImageID == "" {
		return nil, fmt.Errorf("no built image to export")
	}
	if err := p.eng.Save(ctx, p.w.Image, p.path); err != nil {
		return nil, err
	}
	info, err := os.Stat(p.path)
	if err != nil {
		return nil, fmt.Errorf("exported archive missing: %w", err)
	}
	logger.Info("Image exported.", "path", p.path, "size", info.Size())
	return map[string]any{"path": p.path, "size": info.Size()}, nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "export_image",
		Category: registry.PrePublish,
		Params:   []string{"path"},
		New:      newPlugin,
	})
}
