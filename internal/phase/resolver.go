package phase

import (
	"context"
	"fmt"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
)

// ResolvedPlugin is one request matched to a registered descriptor, with its
// arguments prepared and its effective failure policy computed. The resolved
// list is immutable for the duration of the phase run.
type ResolvedPlugin struct {
	Name          string
	Desc          *registry.Descriptor
	Args          map[string]any
	AllowedToFail bool
}

// resolve matches every request against the phase's registry category, in
// order. An unknown plugin that is required aborts resolution for the whole
// phase; an unknown optional plugin is logged and omitted. Resolution never
// executes a plugin.
func (r *Runner) resolve(ctx context.Context) ([]ResolvedPlugin, error) {
	logger := ctxlog.FromContext(ctx)
	descs := r.registry.Lookup(r.category)

	var resolved []ResolvedPlugin
	for _, req := range r.requests {
		d, ok := descs[req.Name]
		if !ok {
			if req.IsRequired() {
				err := &ConfigError{Reason: fmt.Sprintf(
					"no such plugin: '%s', did you set the correct plugin type?", req.Name)}
				r.onPluginFailed(req.Name, err)
				logger.Error(err.Reason)
				return nil, err
			}
			logger.Warn("Plugin requested but not available.", "plugin", req.Name)
			continue
		}

		allowedToFail := true
		if d.AllowedToFail != nil {
			allowedToFail = *d.AllowedToFail
		}
		if req.AllowedToFail != nil {
			allowedToFail = *req.AllowedToFail
		}

		resolved = append(resolved, ResolvedPlugin{
			Name:          req.Name,
			Desc:          d,
			Args:          prepareArgs(ctx, d, req.Args, r.workflow),
			AllowedToFail: allowedToFail,
		})
	}
	return resolved, nil
}

// cloneRequest copies a request so phase wrappers can adjust policy flags
// without mutating the caller's configuration.
func cloneRequest(req *config.PluginRequest) *config.PluginRequest {
	clone := *req
	return &clone
}

