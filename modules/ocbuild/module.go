// Package ocbuild provides the oc_dockerbuild build-step plugin: it submits
// the build to an OpenShift cluster via `oc ex dockerbuild` and optionally
// exports the built image to a tar archive.
package ocbuild

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/forgeci/reactor/internal/build"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/phase"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Key is the registry key of this build step.
const Key = "oc_dockerbuild"

// ExportedImageName is the archive name used when export_image is set.
const ExportedImageName = "built-image.tar"

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	eng         *container.Engine
	w           *workflow.Context
	exportImage bool
}

func newPlugin(eng *container.Engine, w *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{eng: eng, w: w}
	if v, ok := args["export_image"].(bool); ok {
		p.exportImage = v
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	if p.w.BuildMethod() != Key {
		return nil, phase.ErrInappropriateBuildStep
	}
	logger := ctxlog.FromContext(ctx).With("plugin", Key)

	cmd := exec.CommandContext(ctx, "oc", "ex", "dockerbuild", p.w.Source.Path, p.w.Image)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting oc: %w", err)
	}

	logger.Debug("Build is submitted, waiting for it to finish.")
	var lines []string
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		logger.Info(line)
		lines = append(lines, line)
	}

	if err := cmd.Wait(); err != nil {
		return build.NewFailedResult("image not built", lines), nil
	}

	imageID, err := p.eng.ImageID(ctx, p.w.Image)
	if err != nil {
		return build.NewFailedResult("built image could not be inspected: "+err.Error(), lines), nil
	}
	p.w.ImageID = imageID
	p.w.Built = true

	if p.exportImage {
		path := filepath.Join(p.w.Source.Path, ExportedImageName)
		logger.Info("Exporting built image.", "path", path)
		if err := p.eng.Save(ctx, p.w.Image, path); err != nil {
			return build.NewFailedResult("built image could not be exported: "+err.Error(), lines), nil
		}
	}

	return build.NewResult(imageID, lines), nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:           Key,
		Category:      registry.BuildStep,
		Params:        []string{"export_image"},
		AllowedToFail: registry.Bool(false),
		New:           newPlugin,
	})
}
