package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWorkflowPathSources(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "long flag", args: []string{"-workflow", "build.hcl"}, want: "build.hcl"},
		{name: "short flag", args: []string{"-w", "build.hcl"}, want: "build.hcl"},
		{name: "positional", args: []string{"build.hcl"}, want: "build.hcl"},
		{name: "long flag wins over positional", args: []string{"-workflow", "a.hcl", "b.hcl"}, want: "a.hcl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := Parse(tt.args, &out)
			require.NoError(t, err)
			require.False(t, exit)
			assert.Equal(t, tt.want, cfg.WorkflowPath)
		})
	}
}

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"build.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "docker", cfg.ContainerTool)
	assert.Equal(t, "docker_api", cfg.DefaultBuildMethod)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad log format", args: []string{"-log-format", "xml", "build.hcl"}},
		{name: "bad log level", args: []string{"-log-level", "loud", "build.hcl"}},
		{name: "bad container tool", args: []string{"-container-tool", "crane", "build.hcl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tt.args, &out)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}

func TestParseNormalizesCase(t *testing.T) {
	var out bytes.Buffer
	cfg, _, err := Parse([]string{"-log-format", "JSON", "-container-tool", "Podman", "build.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "podman", cfg.ContainerTool)
}
