// Package pathinput provides the path input plugin: it reads the build
// request as JSON from a file. It is never auto-usable because it cannot
// know its path without user input.
package pathinput

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	path string
}

func newPlugin(_ *container.Engine, _ *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{}
	if v, ok := args["path"].(string); ok {
		p.path = v
	}
	if p.path == "" {
		return nil, fmt.Errorf("path argument is required")
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	ctxlog.FromContext(ctx).Debug("Reading build request from file.", "path", p.path)

	raw, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	var request map[string]any
	if err := json.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("%s does not hold valid JSON: %w", p.path, err)
	}
	return request, nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:        "path",
		Category:   registry.Input,
		Params:     []string{"path"},
		New:        newPlugin,
		AutoUsable: func() bool { return false },
	})
}
