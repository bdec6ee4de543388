package dockerapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeci/reactor/internal/phase"
	"github.com/forgeci/reactor/internal/registry"
	"github.com/forgeci/reactor/internal/workflow"
)

func TestRunInappropriateForOtherBuildMethods(t *testing.T) {
	w := workflow.New()
	w.DefaultBuildMethod = "oc_dockerbuild"

	p, err := newPlugin(nil, w, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, phase.ErrInappropriateBuildStep)
}

func TestRegisterNotAllowedToFail(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	d := r.Lookup(registry.BuildStep)[Key]
	require.NotNil(t, d)
	require.NotNil(t, d.AllowedToFail)
	assert.False(t, *d.AllowedToFail)
}
