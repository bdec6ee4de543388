package config

// Model is the unified, format-agnostic representation of one build
// workflow: what to build and which plugins each phase runs.
type Model struct {
	Build *BuildSpec
	// Phases maps a phase name ("input", "prebuild", "buildstep",
	// "postbuild", "prepublish", "exit") to its ordered plugin requests.
	Phases map[string][]*PluginRequest
}

// BuildSpec describes the image being built.
type BuildSpec struct {
	// Image is the target image reference.
	Image string
	// Source is the path of the source checkout.
	Source string
	// Dockerfile is the Dockerfile path, relative to Source when relative.
	Dockerfile string
	// Method is the build method declared for this source, if any.
	Method string
}

// PluginRequest is one entry of a phase's plugin list, as supplied by
// configuration. It is read-only input to resolution.
type PluginRequest struct {
	// Name is the registry key of the requested plugin, or the literal
	// "auto" in the input phase.
	Name string
	// Args holds the plugin's raw arguments.
	Args map[string]any
	// Required defaults to true when nil: an unresolvable required plugin
	// aborts the phase before anything runs.
	Required *bool
	// AllowedToFail overrides the plugin's default failure policy when set.
	AllowedToFail *bool
}

// IsRequired returns the effective required flag.
func (p *PluginRequest) IsRequired() bool {
	return p.Required == nil || *p.Required
}
