package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Info("supplied %d %s", 10, "USDC")
	assert.Contains(t, buf.String(), "[info]")
	assert.Contains(t, buf.String(), "supplied 10 USDC")
}

func TestInitFileOnly(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	path, err := InitFileOnly(dir)
	require.NoError(t, err)
	t.Cleanup(func() {
		Close()
		SetOutput(os.Stderr)
	})
	assert.Equal(t, filepath.Join(dir, "comet-dash.log"), path)

	Tx("mined", "supply", "WETH", "0xabc")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"operation":"supply"`)
	assert.Contains(t, string(data), `"tx":"0xabc"`)
}
