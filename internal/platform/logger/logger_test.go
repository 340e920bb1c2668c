package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podium/internal/platform/config"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	log.Debug("dataset loaded", "rows", 42)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dataset loaded", line["msg"])
	assert.EqualValues(t, 42, line["rows"])
}

func TestNewWithWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "warn"}, &buf)
	log.Info("ignored")
	assert.Empty(t, buf.String())
	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
