package phase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forgeci/reactor/internal/build"
	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Runner executes one phase's resolved plugin list, strictly sequentially
// and in list order. Phase wrappers differ only in the category they resolve
// against, the result map they write to, and a few policy knobs.
type Runner struct {
	category registry.Category
	registry *registry.Registry
	engine   *container.Engine
	workflow *workflow.Context
	results  *workflow.Results
	requests []*config.PluginRequest

	// keepGoing accumulates not-allowed-to-fail failures instead of raising
	// them at the point of failure. Used for exit plugins.
	keepGoing bool
	// buildstepPhase enables single-winner semantics: the first successful
	// plugin stops the loop, inapplicable candidates are skipped.
	buildstepPhase bool
}

func newRunner(cat registry.Category, reg *registry.Registry, eng *container.Engine,
	w *workflow.Context, sink *workflow.Results, requests []*config.PluginRequest) *Runner {
	return &Runner{
		category: cat,
		registry: reg,
		engine:   eng,
		workflow: w,
		results:  sink,
		requests: requests,
	}
}

// onPluginFailed records a fatal plugin failure in the shared context.
func (r *Runner) onPluginFailed(key string, err error) {
	r.workflow.PluginFailed = true
	r.workflow.PluginErrors[key] = err.Error()
}

// invoke constructs the plugin with its prepared arguments and runs it.
// Construction errors are classified exactly like run errors.
func (r *Runner) invoke(ctx context.Context, p ResolvedPlugin) (any, error) {
	instance, err := p.Desc.New(r.engine, r.workflow, p.Args)
	if err != nil {
		return nil, err
	}
	response, err := instance.Run(ctx)
	if err != nil {
		return nil, err
	}
	if r.buildstepPhase {
		if _, ok := response.(*build.Result); !ok {
			return nil, fmt.Errorf("build step plugin returned %T, want *build.Result", response)
		}
	}
	return response, nil
}

// Run resolves the requested plugins and executes them in order, recording
// each outcome in the phase's result map. See the package documentation for
// the classification rules.
func (r *Runner) Run(ctx context.Context) (*workflow.Results, error) {
	logger := ctxlog.FromContext(ctx).With("phase", string(r.category))

	resolved, err := r.resolve(ctx)
	if err != nil {
		return nil, err
	}

	var causes []Cause
	var pluginSuccessful bool
	var lastResponse any

	for _, p := range resolved {
		pluginSuccessful = false
		lastResponse = nil
		key := p.Desc.Key
		logger.Debug("Running plugin.", "plugin", key)

		start := time.Now()
		r.workflow.PluginTimestamps[key] = start

		response, runErr := r.invoke(ctx, p)
		skipResponse := false

		if runErr != nil {
			switch {
			case isCancellation(runErr):
				// Cancellation always propagates unwrapped: callers must be
				// able to tell it apart from an ordinary plugin failure.
				return nil, runErr

			case errors.Is(runErr, ErrInappropriateBuildStep):
				logger.Debug("Build step is not appropriate.", "plugin", key)
				skipResponse = true
				if !r.buildstepPhase {
					return nil, runErr
				}

			default:
				cause := Cause{Plugin: key, Err: runErr}
				if !p.AllowedToFail {
					r.onPluginFailed(key, runErr)
				}
				if p.AllowedToFail || r.keepGoing {
					logger.Warn(cause.String())
					logger.Info("Error is not fatal, continuing.")
					if !p.AllowedToFail {
						causes = append(causes, cause)
					}
					response = runErr
				} else {
					logger.Error(cause.String())
					return nil, &PluginFailedError{Causes: append(causes, cause)}
				}
			}
		} else {
			pluginSuccessful = true
			if r.buildstepPhase {
				result := response.(*build.Result)
				if result.IsFailed() {
					// A failed build result is a legitimate response: record
					// it and stop, the caller inspects it.
					logger.Error("Build step plugin failed.", "plugin", key, "reason", result.FailReason)
					r.onPluginFailed(key, errors.New(result.FailReason))
					pluginSuccessful = false
					r.results.Set(key, result)
					lastResponse = result
					r.saveDuration(ctx, key, start)
					break
				}
			}
		}

		r.saveDuration(ctx, key, start)

		if !skipResponse {
			r.results.Set(key, response)
			lastResponse = response
		}

		if pluginSuccessful && r.buildstepPhase {
			logger.Debug("Stopping further execution of plugins after first successful plugin.")
			break
		}
	}

	if len(causes) > 0 {
		logger.Error("Deferred plugin failures are fatal.", "count", len(causes))
		return nil, &PluginFailedError{Causes: causes}
	}

	if r.buildstepPhase && !pluginSuccessful && lastResponse == nil {
		r.onPluginFailed("buildstep", ErrNoBuildStep)
		return nil, ErrNoBuildStep
	}

	return r.results, nil
}

// saveDuration records how long a plugin ran. Bookkeeping only: it must
// never affect the phase outcome.
func (r *Runner) saveDuration(ctx context.Context, key string, start time.Time) {
	elapsed := time.Since(start)
	r.workflow.PluginDurations[key] = elapsed
	ctxlog.FromContext(ctx).Debug("Plugin finished.", "plugin", key, "elapsed", elapsed)
}
