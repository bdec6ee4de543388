package phase

import (
	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// NewPreBuildRunner returns the runner for pre-build plugins.
func NewPreBuildRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *Runner {
	return newRunner(registry.PreBuild, reg, eng, w, w.PreBuildResults, requests)
}

// NewPostBuildRunner returns the runner for post-build plugins.
func NewPostBuildRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *Runner {
	return newRunner(registry.PostBuild, reg, eng, w, w.PostBuildResults, requests)
}

// NewPrePublishRunner returns the runner for pre-publish plugins.
func NewPrePublishRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *Runner {
	return newRunner(registry.PrePublish, reg, eng, w, w.PrePublishResults, requests)
}

// NewExitRunner returns the runner for exit plugins. Exit plugins run in
// best-effort mode: even a not-allowed-to-fail failure does not stop the
// remaining exit plugins; the collected failures surface once, after the
// loop, as a single aggregated error.
func NewExitRunner(reg *registry.Registry, eng *container.Engine, w *workflow.Context,
	requests []*config.PluginRequest) *Runner {
	r := newRunner(registry.Exit, reg, eng, w, w.ExitResults, requests)
	r.keepGoing = true
	return r
}
