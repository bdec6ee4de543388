package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsPreserveInsertionOrder(t *testing.T) {
	r := NewResults()
	r.Set("c", 1)
	r.Set("a", 2)
	r.Set("b", 3)

	assert.Equal(t, []string{"c", "a", "b"}, r.Keys())
	assert.Equal(t, 3, r.Len())
}

func TestResultsSetOverwritesInPlace(t *testing.T) {
	r := NewResults()
	r.Set("a", 1)
	r.Set("b", 2)
	r.Set("a", 10)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestResultsRenameKeepsPosition(t *testing.T) {
	r := NewResults()
	r.Set("env", "payload")
	r.Set("other", "x")

	r.Rename("env", "auto")

	assert.Equal(t, []string{"auto", "other"}, r.Keys())
	v, ok := r.Get("auto")
	require.True(t, ok)
	assert.Equal(t, "payload", v)
	_, ok = r.Get("env")
	assert.False(t, ok)
}

func TestResultsRenameMissingKeyIsNoop(t *testing.T) {
	r := NewResults()
	r.Set("a", 1)
	r.Rename("missing", "auto")
	assert.Equal(t, []string{"a"}, r.Keys())
}

func TestContextBuildMethod(t *testing.T) {
	c := New()
	c.DefaultBuildMethod = "docker_api"
	assert.Equal(t, "docker_api", c.BuildMethod())

	c.Source.BuildMethod = "oc_dockerbuild"
	assert.Equal(t, "oc_dockerbuild", c.BuildMethod())
}

func TestContextEnsureNotBuilt(t *testing.T) {
	c := New()
	assert.NoError(t, c.EnsureNotBuilt())

	c.Built = true
	assert.ErrorIs(t, c.EnsureNotBuilt(), ErrAlreadyBuilt)
}
