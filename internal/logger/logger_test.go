package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/promptbase/internal/config"
)

func TestNew_WritesJSONToConsole(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := newWithConsole(config.LogConfig{Level: "debug"}, &buf)
	require.NoError(t, err)

	log.Debug("prompt created")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "prompt created", entry["msg"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := newWithConsole(config.LogConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	log.Info("dropped")
	assert.Zero(t, buf.Len())
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptbase.log")
	var buf bytes.Buffer

	log, cleanup, err := newWithConsole(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	log.Info("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "INVALID"})
	assert.Error(t, err)
}

func TestNew_CleanupFlushesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptbase.log")
	var buf bytes.Buffer

	log, cleanup, err := newWithConsole(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	log.Info("buffered line")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffered line")
}

func TestNew_CleanupWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	log, cleanup, err := newWithConsole(config.LogConfig{}, &buf)
	require.NoError(t, err)

	log.Info("console only")
	assert.NoError(t, cleanup())
	assert.Contains(t, buf.String(), "console only")
}
