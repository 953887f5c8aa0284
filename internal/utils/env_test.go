package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/.comet-dash")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".comet-dash"), got)

	got, err = ExpandPath("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandPath("/var/lib/comet")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/comet", got)

	got, err = ExpandPath("~other/x")
	require.NoError(t, err)
	assert.Equal(t, "~other/x", got)
}
