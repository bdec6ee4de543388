package registry

import (
	"context"
	"log/slog"

	"github.com/forgeci/reactor/internal/container"
	"github.com/forgeci/reactor/internal/workflow"
)

// Category identifies which phase a plugin belongs to.
type Category string

// The six plugin categories, one per phase.
const (
	Input      Category = "input"
	PreBuild   Category = "prebuild"
	BuildStep  Category = "buildstep"
	PostBuild  Category = "postbuild"
	PrePublish Category = "prepublish"
	Exit       Category = "exit"
)

// Categories lists every known category.
var Categories = []Category{Input, PreBuild, BuildStep, PostBuild, PrePublish, Exit}

// Known reports whether c is one of the defined categories.
func (c Category) Known() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Plugin is the single capability every plugin implements. Run returns an
// arbitrary response value, or an error classified by the phase executor.
type Plugin interface {
	Run(ctx context.Context) (any, error)
}

// Constructor builds a plugin instance from the toolchain handle, the shared
// workflow context, and its prepared arguments.
type Constructor func(eng *container.Engine, w *workflow.Context, args map[string]any) (Plugin, error)

// Descriptor describes one registered plugin. It is created once at
// registration time and immutable afterward.
type Descriptor struct {
	// Key is the unique name the plugin is requested by.
	Key string
	// Category is the phase category the plugin implements.
	Category Category
	// Params lists the argument keys the constructor accepts.
	Params []string
	// AcceptsExtra disables unknown-argument filtering for this plugin.
	AcceptsExtra bool
	// AllowedToFail is the plugin's default failure policy. Nil means the
	// engine default (true).
	AllowedToFail *bool
	// New constructs an instance of the plugin.
	New Constructor
	// AutoUsable reports whether an input plugin can run without further
	// user input. Only meaningful for the Input category.
	AutoUsable func() bool
}

// Bool returns a pointer to b, for descriptor and request policy fields.
func Bool(b bool) *bool {
	return &b
}

// Module is the interface all built-in plugin packages implement to be
// registered with an application instance.
type Module interface {
	Register(r *Registry)
}

// Registry indexes plugin descriptors by category and key for a single
// application instance.
type Registry struct {
	byCategory map[Category]map[string]*Descriptor
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	byCategory := make(map[Category]map[string]*Descriptor, len(Categories))
	for _, c := range Categories {
		byCategory[c] = make(map[string]*Descriptor)
	}
	return &Registry{byCategory: byCategory}
}

// Register adds a descriptor under its key and category. A descriptor that
// cannot work — empty key, unknown category, nil constructor — is logged and
// skipped so that one broken plugin never prevents others from registering.
// Re-registering the same key replaces the earlier descriptor: last wins.
func (r *Registry) Register(d *Descriptor) {
	if d == nil || d.Key == "" {
		slog.Warn("Skipping plugin registration: missing key.")
		return
	}
	if !d.Category.Known() {
		slog.Warn("Skipping plugin registration: unknown category.", "key", d.Key, "category", string(d.Category))
		return
	}
	if d.New == nil {
		slog.Warn("Skipping plugin registration: no constructor.", "key", d.Key)
		return
	}
	if _, exists := r.byCategory[d.Category][d.Key]; exists {
		slog.Warn("Plugin key already registered, replacing.", "key", d.Key, "category", string(d.Category))
	}
	slog.Debug("Registering plugin.", "key", d.Key, "category", string(d.Category))
	r.byCategory[d.Category][d.Key] = d
}

// Lookup returns the key→descriptor map for one category. The returned map
// is the registry's own index and must be treated as read-only.
func (r *Registry) Lookup(c Category) map[string]*Descriptor {
	return r.byCategory[c]
}
