package phase

import (
	"context"

	"github.com/forgeci/reactor/internal/ctxlog"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

// Recognized placeholder tokens, replaced in plugin arguments with live
// build-context values.
const (
	TokenBuiltImageID        = "BUILT_IMAGE_ID"
	TokenBuildDockerfilePath = "BUILD_DOCKERFILE_PATH"
	TokenBuildSourcePath     = "BUILD_SOURCE_PATH"
	TokenBaseImage           = "BASE_IMAGE"
)

// specialValues builds the placeholder translation table from the current
// build context. BASE_IMAGE is present only while a base image is known;
// otherwise the token stays a literal string in the arguments.
func specialValues(w *workflow.Context) map[string]string {
	values := map[string]string{
		TokenBuiltImageID:        w.ImageID,
		TokenBuildDockerfilePath: w.Source.DockerfilePath,
		TokenBuildSourcePath:     w.Source.Path,
	}
	if w.BaseImage != "" {
		values[TokenBaseImage] = w.BaseImage
	}
	return values
}

// translateSpecialValues walks a raw argument value and replaces every
// scalar that exactly matches a placeholder token. Maps recurse key-wise,
// slices element-wise. The walk never mutates its input; it returns a deep
// copy of anything it descends into.
func translateSpecialValues(v any, values map[string]string) any {
	switch val := v.(type) {
	case map[string]any:
		translated := make(map[string]any, len(val))
		for k, elem := range val {
			translated[k] = translateSpecialValues(elem, values)
		}
		return translated
	case []any:
		translated := make([]any, len(val))
		for i, elem := range val {
			translated[i] = translateSpecialValues(elem, values)
		}
		return translated
	case string:
		if live, ok := values[val]; ok {
			return live
		}
		return val
	default:
		return val
	}
}

// filterUnknownArgs drops argument keys the plugin does not declare, logging
// each dropped key with its value. Plugins registered with AcceptsExtra get
// the argument map unchanged. It never fails.
func filterUnknownArgs(ctx context.Context, d *registry.Descriptor, args map[string]any) map[string]any {
	if d.AcceptsExtra || args == nil {
		return args
	}
	logger := ctxlog.FromContext(ctx)

	declared := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		declared[p] = struct{}{}
	}

	known := make(map[string]any, len(args))
	for key, value := range args {
		if _, ok := declared[key]; !ok {
			logger.Warn("Plugin does not take this parameter, ignoring it.",
				"plugin", d.Key, "param", key, "value", value)
			continue
		}
		known[key] = value
	}
	return known
}

// prepareArgs applies special-value substitution and unknown-argument
// filtering to a plugin's raw argument map.
func prepareArgs(ctx context.Context, d *registry.Descriptor, args map[string]any, w *workflow.Context) map[string]any {
	translated, _ := translateSpecialValues(args, specialValues(w)).(map[string]any)
	return filterUnknownArgs(ctx, d, translated)
}
