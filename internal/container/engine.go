// Package container wraps the container toolchain the build runs on top of.
// It drives the docker or podman binary directly; plugins receive an Engine
// handle and never spawn the toolchain themselves.
package container

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/forgeci/reactor/internal/ctxlog"
)

// Engine is a handle to a CLI-compatible container toolchain.
type Engine struct {
	bin string
}

// New creates an Engine driving the given binary, e.g. "docker" or "podman".
func New(bin string) *Engine {
	if bin == "" {
		bin = "docker"
	}
	return &Engine{bin: bin}
}

// Bin returns the toolchain binary this engine drives.
func (e *Engine) Bin() string {
	return e.bin
}

// run executes one toolchain command and returns its combined output lines.
func (e *Engine) run(ctx context.Context, args ...string) ([]string, error) {
	logger := ctxlog.FromContext(ctx).With("bin", e.bin)
	logger.Debug("Running toolchain command.", "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()

	var lines []string
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err != nil {
		return lines, fmt.Errorf("%s %s: %w", e.bin, args[0], err)
	}
	return lines, nil
}

// Build builds an image from contextDir using the given Dockerfile and tags
// it with ref. It returns the build output lines.
func (e *Engine) Build(ctx context.Context, contextDir, dockerfile, ref string) ([]string, error) {
	args := []string{"build", "-t", ref}
	if dockerfile != "" {
		args = append(args, "-f", dockerfile)
	}
	args = append(args, contextDir)
	return e.run(ctx, args...)
}

// ImageID resolves the identifier of a local image reference.
func (e *Engine) ImageID(ctx context.Context, ref string) (string, error) {
	lines, err := e.run(ctx, "inspect", "--format", "{{.Id}}", ref)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("no image id for %q", ref)
	}
	return strings.TrimSpace(lines[len(lines)-1]), nil
}

// Tag applies an additional tag to an existing image.
func (e *Engine) Tag(ctx context.Context, ref, newRef string) error {
	_, err := e.run(ctx, "tag", ref, newRef)
	return err
}

// Push pushes an image reference to its registry.
func (e *Engine) Push(ctx context.Context, ref string) ([]string, error) {
	return e.run(ctx, "push", ref)
}

// Save exports an image to a tar archive at path.
func (e *Engine) Save(ctx context.Context, ref, path string) error {
	_, err := e.run(ctx, "save", "-o", path, ref)
	return err
}

// Remove deletes a local image.
func (e *Engine) Remove(ctx context.Context, ref string) error {
	_, err := e.run(ctx, "rmi", "-f", ref)
	return err
}
