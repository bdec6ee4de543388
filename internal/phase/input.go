package phase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// AutoInput is the request name that asks the engine to pick the single
// input plugin declaring itself usable without further user input.
const AutoInput = "auto"

// InputRunner wraps the generic runner with the "auto" selection protocol.
type InputRunner struct {
	*Runner
}

// NewInputRunner returns the runner for input plugins.
func NewInputRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *InputRunner {
	return &InputRunner{
		Runner: newRunner(registry.Input, reg, eng, w, w.InputResults, requests),
	}
}

// Run executes the input phase. When the first requested plugin is named
// "auto", exactly one registered input plugin must declare itself usable;
// that plugin is substituted into the request, and after execution its
// result entry is renamed to the literal key "auto".
func (r *InputRunner) Run(ctx context.Context) (*workflow.Results, error) {
	auto := len(r.requests) > 0 && r.requests[0].Name == AutoInput

	var chosen string
	if auto {
		key, err := r.selectAutoUsable(ctx)
		if err != nil {
			return nil, err
		}
		chosen = key

		requests := make([]*config.PluginRequest, len(r.requests))
		copy(requests, r.requests)
		first := cloneRequest(requests[0])
		first.Name = chosen
		requests[0] = first
		r.requests = requests
	}

	results, err := r.Runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	if auto {
		results.Rename(chosen, AutoInput)
	}
	return results, nil
}

// selectAutoUsable queries every registered input plugin for its static
// usability declaration. Zero or more than one positive declaration is a
// configuration error naming the candidates found.
func (r *InputRunner) selectAutoUsable(ctx context.Context) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug(`"auto" input used, determining what input plugin to use.`)

	var usable []string
	for key, d := range r.registry.Lookup(registry.Input) {
		logger.Debug("Checking if input plugin is autousable.", "plugin", key)
		if d.AutoUsable != nil && d.AutoUsable() {
			usable = append(usable, key)
		}
	}
	sort.Strings(usable)

	switch len(usable) {
	case 0:
		return "", &ConfigError{Reason: "no autousable input plugin, please specify the input explicitly"}
	case 1:
		logger.Debug("Using input plugin.", "plugin", usable[0])
		return usable[0], nil
	default:
		return "", &ConfigError{Reason: fmt.Sprintf(
			`more than one usable plugin with "auto" input: %s, please specify the input explicitly`,
			strings.Join(usable, ", "))}
	}
}
