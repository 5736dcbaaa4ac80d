package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	cmd, v, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", cmd)
	assert.Zero(t, v)

	cmd, _, err = parseArgs([]string{"down"})
	require.NoError(t, err)
	assert.Equal(t, "down", cmd)

	cmd, v, err = parseArgs([]string{"force", "3"})
	require.NoError(t, err)
	assert.Equal(t, "force", cmd)
	assert.Equal(t, 3, v)
}

func TestParseArgsRejectsBadInput(t *testing.T) {
	_, _, err := parseArgs([]string{"force"})
	assert.Error(t, err)

	_, _, err = parseArgs([]string{"force", "abc"})
	assert.Error(t, err)

	_, _, err = parseArgs([]string{"sideways"})
	assert.Error(t, err)
}
