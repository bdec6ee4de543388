// Package workflow holds the shared mutable state of a single build. The
// engine writes phase results and bookkeeping into it; plugins read results
// of earlier phases and publish auxiliary state through it.
//
// The context is deliberately unlocked: execution is single-threaded by
// contract, phases run one after another and plugin N+1 never starts before
// plugin N returned.
package workflow

import (
	"errors"
	"time"
)

// ErrAlreadyBuilt is returned when a build step is attempted on a workflow
// whose image has already been built.
var ErrAlreadyBuilt = errors.New("image has already been built")

// Source describes the checked-out source of the image being built.
type Source struct {
	// Path is the root of the source checkout.
	Path string
	// DockerfilePath is the location of the Dockerfile inside the checkout.
	DockerfilePath string
	// BuildMethod is the build method declared by the source, if any.
	BuildMethod string
}

// Context is the state bag shared by all phases of one build. It is created
// before the input phase and discarded with the build.
type Context struct {
	// Image is the target image reference being built.
	Image string
	// ImageID is the identifier of the built image, set by the build step.
	ImageID string
	// BaseImage is the resolved base image, when known.
	BaseImage string
	// Built reports whether the build step has already produced an image.
	Built bool

	Source Source

	// DefaultBuildMethod is the process-wide fallback build method used when
	// neither configuration nor source declares one.
	DefaultBuildMethod string

	// Per-phase result maps, append-only during each phase's run.
	InputResults      *Results
	PreBuildResults   *Results
	BuildStepResults  *Results
	PostBuildResults  *Results
	PrePublishResults *Results
	ExitResults       *Results

	// PluginFailed is set once any not-allowed-to-fail plugin fails.
	PluginFailed bool
	// PluginErrors maps plugin key to the message of its fatal failure.
	PluginErrors map[string]string
	// PluginTimestamps maps plugin key to the time its run started.
	PluginTimestamps map[string]time.Time
	// PluginDurations maps plugin key to how long its run took.
	PluginDurations map[string]time.Duration
}

// New creates a workflow context for one build.
func New() *Context {
	return &Context{
		InputResults:      NewResults(),
		PreBuildResults:   NewResults(),
		BuildStepResults:  NewResults(),
		PostBuildResults:  NewResults(),
		PrePublishResults: NewResults(),
		ExitResults:       NewResults(),
		PluginErrors:      make(map[string]string),
		PluginTimestamps:  make(map[string]time.Time),
		PluginDurations:   make(map[string]time.Duration),
	}
}

// EnsureNotBuilt returns ErrAlreadyBuilt when the build step already ran.
func (c *Context) EnsureNotBuilt() error {
	if c.Built {
		return ErrAlreadyBuilt
	}
	return nil
}

// BuildMethod returns the effective build method: the one the source
// declares, else the process-wide default.
func (c *Context) BuildMethod() string {
	if c.Source.BuildMethod != "" {
		return c.Source.BuildMethod
	}
	return c.DefaultBuildMethod
}
