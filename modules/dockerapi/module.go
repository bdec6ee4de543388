// Package dockerapi provides the docker_api build-step plugin: it builds the
// target image through the container toolchain handle and records the built
// image id in the workflow context.
package dockerapi

import (
	"context"

	"github.com/forgeci/reactor/internal/build"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/phase"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Key is the registry key of this build step.
const Key = "docker_api"

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
	if p.w.BuildMethod() != Key {
		return nil, phase.ErrInappropriateBuildStep
	}
	logger := ctxlog.FromContext(ctx).With("plugin", Key)

	logs, err := p.eng.Build(ctx, p.w.Source.Path, p.w.Source.DockerfilePath, p.w.Image)
	if err != nil {
		logger.Error("Image build failed.", "error", err)
		return build.NewFailedResult(err.Error(), logs), nil
	}

	imageID, err := p.eng.ImageID(ctx, p.w.Image)
	if err != nil {
		return build.NewFailedResult("built image could not be inspected: "+err.Error(), logs), nil
	}

	p.w.ImageID = imageID
	p.w.Built = true
	logger.Info("Image built.", "image", p.w.Image, "image_id", imageID)
	return build.NewResult(imageID, logs), nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:           Key,
		Category:      registry.BuildStep,
		AllowedToFail: registry.Bool(false),
		New:           newPlugin,
	})
}
