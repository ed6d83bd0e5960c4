package logging

import (
	"os"
	"path/filepath"
	"testing"

	"jobsite-timeclock/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	lg, err := New(config.LogConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	lg.Debug("hello")
	_ = lg.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud"})
	require.Error(t, err)
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	lg, err := New(config.LogConfig{})
	require.NoError(t, err)
	assert.False(t, lg.Core().Enabled(-1))
	assert.True(t, lg.Core().Enabled(0))
}
