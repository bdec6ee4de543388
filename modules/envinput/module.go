// Package envinput provides the env input plugin: it reads the build
// request as JSON from an environment variable. It declares itself usable
// for "auto" input whenever that variable is set.
package envinput

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

// DefaultEnvName is the environment variable consulted when the env_name
// argument is not given.
const DefaultEnvName = "REACTOR_BUILD_JSON"

// Module implements the registry.Module interface for this package.
type Module struct{}

type plugin struct {
	envName string
}

func newPlugin(_ *container.Engine, _ *workflow.Context, args map[string]any) (registry.Plugin, error) {
	p := &plugin{envName: DefaultEnvName}
	if v, ok := args["env_name"].(string); ok && v != "" {
		p.envName = v
	}
	return p, nil
}

func (p *plugin) Run(ctx context.Context) (any, error) {
	ctxlog.FromContext(ctx).Debug("Reading build request from environment.", "env", p.envName)

	raw, ok := os.LookupEnv(p.envName)
	if !ok {
		return nil, fmt.Errorf("environment variable %s is not set", p.envName)
	}
	var request map[string]any
	if err := json.Unmarshal([]byte(raw), &request); err != nil {
		return nil, fmt.Errorf("%s does not hold valid JSON: %w", p.envName, err)
	}
	return request, nil
}

// Register registers the plugin with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.Register(&registry.Descriptor{
		Key:      "env",
		Category: registry.Input,
		Params:   []string{"env_name"},
		New:      newPlugin,
		AutoUsable: func() bool {
			_, ok := os.LookupEnv(DefaultEnvName)
			return ok
		},
	})
}
