// Package tagpush provides the tag_and_push post-build plugin: it applies
// the configured tags to the built image and pushes each of them.
package tagpush

import (
	"context"
	"fmt"

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
	tags []string
}

func newPlugin(eng *container.Engine, w *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{eng: eng, w: w}
	if raw, ok := args["tags"].([]any); ok {
		for _, t := range raw {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("tags must be strings, got %T", t)
			}
			p.tags = append(p.tags, s)
		}
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	logger := ctxlog.FromContext(ctx).With("plugin", "tag_and_push")

	if p.w.ImageID == "" {
		return nil, fmt.Errorf("no built image to push")
	}

	refs := p.tags
	if len(refs) == 0 {
		refs = []string{p.w.Image}
	}

	var pushed []string
	for _, ref := range refs {
		if ref != p.w.Image {
			if err := p.eng.Tag(ctx, p.w.Image, ref); err != nil {
				return nil, fmt.Errorf("tagging %s: %w", ref, err)
			}
		}
		logger.Info("Pushing image.", "ref", ref)
		if _, err := p.eng.Push(ctx, ref); err != nil {
			return nil, fmt.Errorf("pushing %s: %w", ref, err)
		}
		pushed = append(pushed, ref)
	}
	return pushed, nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "tag_and_push",
		Category: registry.PostBuild,
		Params:   []string{"tags"},
		New:      newPlugin,
	})
}
