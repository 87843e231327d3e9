package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps("")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	steps, err = parseSteps(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	_, err = parseSteps("0")
	assert.Error(t, err)
	_, err = parseSteps("x")
	assert.Error(t, err)
}

func TestParseVersionAndTarget(t *testing.T) {
	v, err := parseVersion("1771776034")
	require.NoError(t, err)
	assert.Equal(t, 1771776034, v)

	_, err = parseVersion("-1")
	assert.Error(t, err)
	_, err = parseVersion("")
	assert.Error(t, err)

	target, err := parseTarget("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), target)

	_, err = parseTarget("-42")
	assert.Error(t, err)
}

func TestResolveMigrationsDir_PrefersExplicit(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveMigrationsDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestNewCLI_RegistersCommands(t *testing.T) {
	app := newCLI()
	for _, name := range []string{"up", "down", "version", "force", "goto", "migrate"} {
		assert.NotNil(t, app.Command(name), "command %q", name)
	}
}
