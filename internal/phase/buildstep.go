package phase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/forgeci/reactor/internal/build"
	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// BuildStepRunner wraps the generic runner with the single-winner build-step
// protocol: candidates run in order until the first one succeeds.
type BuildStepRunner struct {
	*Runner
}

// NewBuildStepRunner returns the runner for the build step. Configured
// candidates are forced optional and not allowed to fail, so an unresolvable
// candidate falls through to "no appropriate build step" instead of a hard
// configuration error. With no candidates configured, a single request is
// synthesized from the build method the source declares, falling back to the
// process-wide default.
func NewBuildStepRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *BuildStepRunner {

	if len(requests) > 0 {
		forced := make([]*config.PluginRequest, len(requests))
		for i, req := range requests {
			clone := cloneRequest(req)
			clone.Required = registry.Bool(false)
			clone.AllowedToFail = registry.Bool(false)
			forced[i] = clone
		}
		requests = forced
	} else {
		requests = []*config.PluginRequest{{
			Name:          w.BuildMethod(),
			Required:      registry.Bool(false),
			AllowedToFail: registry.Bool(false),
		}}
	}

	r := newRunner(registry.BuildStep, reg, eng, w, w.BuildStepResults, requests)
	r.buildstepPhase = true
	return &BuildStepRunner{Runner: r}
}

// Run executes build-step candidates and returns the single build result
// directly rather than a result map. Attempting a build on an already-built
// workflow is a fatal precondition violation.
func (r *BuildStepRunner) Run(ctx context.Context) (*build.Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Building image inside current environment.", "image", r.workflow.Image)

	if err := r.workflow.EnsureNotBuilt(); err != nil {
		return nil, err
	}

	if dfPath := r.dockerfilePath(); dfPath != "" {
		if content, err := os.ReadFile(dfPath); err == nil {
			logger.Debug("Using dockerfile.", "content", string(content))
		} else {
			logger.Debug("Could not read dockerfile.", "path", dfPath, "error", err)
		}
	} else {
		logger.Debug("No dockerfile path has been specified.")
	}

	results, err := r.Runner.Run(ctx)
	if err != nil {
		return nil, err
	}

	keys := results.Keys()
	response, _ := results.Get(keys[0])
	return response.(*build.Result), nil
}

// dockerfilePath resolves the dockerfile location relative to the source
// checkout when it is not absolute.
func (r *BuildStepRunner) dockerfilePath() string {
	src := r.workflow.Source
	if src.DockerfilePath == "" {
		return ""
	}
	if filepath.IsAbs(src.DockerfilePath) {
		return src.DockerfilePath
	}
	return filepath.Join(src.Path, src.DockerfilePath)
}
