package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("0.3.1")
	defer SetVersion("dev")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "briefing version 0.3.1\n", out)
}

func TestVersionPrintsInjectedBuildString(t *testing.T) {
	SetVersion("v1.2.0-rc1+a1b2c3d")
	defer SetVersion("dev")

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "v1.2.0-rc1+a1b2c3d")
}
