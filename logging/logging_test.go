package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shodgson/prosemirror-widgets/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(config.LoggingConfig{Level: "warn"}, &buf, false)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", zap.Int("n", 1))
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")

	buf.Reset()
	log, err = New(config.LoggingConfig{Level: "warn"}, &buf, true)
	require.NoError(t, err)
	log.Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestFileCoreWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "widgets.log")
	cfg := config.DefaultConfig().Logging
	cfg.File = path
	var buf bytes.Buffer
	log, err := New(cfg, &buf, false)
	require.NoError(t, err)
	log.Info("resized", zap.Int("width", 320))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "resized", entry["message"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(320), entry["width"])
	assert.Contains(t, buf.String(), "resized")
}
