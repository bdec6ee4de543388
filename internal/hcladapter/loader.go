// Package hcladapter is the HCL implementation of the config.Loader
// interface. It parses workflow files into the format-agnostic model,
// converting plugin arguments from cty values to the native Go values that
// plugin constructors consume.
package hcladapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/forgeci/reactor/internal/config"
	"github.com/forgeci/reactor/internal/ctxlog"
)

// phaseNames is the set of valid phase labels in a workflow file.
var phaseNames = map[string]struct{}{
	"input":      {},
	"prebuild":   {},
	"buildstep":  {},
	"postbuild":  {},
	"prepublish": {},
	"exit":       {},
}

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL workflow loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Build  *buildBlock   `hcl:"build,block"`
	Phases []*phaseBlock `hcl:"phase,block"`
	Remain hcl.Body      `hcl:",remain"`
}

type buildBlock struct {
	Image      string `hcl:"image"`
	Source     string `hcl:"source,optional"`
	Dockerfile string `hcl:"dockerfile,optional"`
	Method     string `hcl:"method,optional"`
}

type phaseBlock struct {
	Name    string         `hcl:"name,label"`
	Plugins []*pluginBlock `hcl:"plugin,block"`
}

type pluginBlock struct {
	Name          string         `hcl:"name,label"`
	Args          hcl.Expression `hcl:"args,optional"`
	Required      *bool          `hcl:"required,optional"`
	AllowedToFail *bool          `hcl:"is_allowed_to_fail,optional"`
}

// Load orchestrates the workflow loading process. Paths may be individual
// .hcl files or directories; blocks from all files are merged in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Phases: make(map[string][]*config.PluginRequest),
	}

	hclFiles, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if root.Build != nil {
			if model.Build != nil {
				return nil, fmt.Errorf("duplicate build block in %s", file)
			}
			model.Build = &config.BuildSpec{
				Image:      root.Build.Image,
				Source:     root.Build.Source,
				Dockerfile: root.Build.Dockerfile,
				Method:     root.Build.Method,
			}
		}

		for _, ph := range root.Phases {
			if _, ok := phaseNames[ph.Name]; !ok {
				return nil, fmt.Errorf("unknown phase %q in %s", ph.Name, file)
			}
			for _, pl := range ph.Plugins {
				req, err := l.translatePluginRequest(ctx, pl)
				if err != nil {
					return nil, fmt.Errorf("in %s, phase %q: %w", file, ph.Name, err)
				}
				model.Phases[ph.Name] = append(model.Phases[ph.Name], req)
			}
		}
	}

	if model.Build == nil {
		return nil, fmt.Errorf("no build block found in %v", paths)
	}

	logger.Debug("HCL loading complete.", "phases", len(model.Phases))
	return model, nil
}

// translatePluginRequest evaluates one plugin block into a request with
// native-Go argument values.
func (l *Loader) translatePluginRequest(ctx context.Context, pl *pluginBlock) (*config.PluginRequest, error) {
	req := &config.PluginRequest{
		Name:          pl.Name,
		Required:      pl.Required,
		AllowedToFail: pl.AllowedToFail,
	}

	if isExprDefined(pl.Args) {
		val, diags := pl.Args.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid args for plugin %q: %w", pl.Name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("args for plugin %q: %w", pl.Name, err)
		}
		args, ok := native.(map[string]any)
		if !ok && native != nil {
			return nil, fmt.Errorf("args for plugin %q must be an object", pl.Name)
		}
		req.Args = args
	}

	return req, nil
}

// isExprDefined checks if an HCL expression was actually present in the
// source. The decoder populates omitted optional fields with non-nil,
// zero-width expression objects, so a nil check is insufficient.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	exprRange := expr.Range()
	return exprRange.End.Byte > exprRange.Start.Byte
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
