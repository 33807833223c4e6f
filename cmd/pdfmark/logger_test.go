package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("json", "warn", &buf)

	log.Info("dropped")
	log.Warn("kept", "page", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, float64(3), line["page"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("text", "debug", &buf)

	log.Debug("converted", "pages", 2)
	assert.Contains(t, buf.String(), "converted")
	assert.Contains(t, buf.String(), "pages=2")
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger("json", "loud", &buf)

	log.Debug("hidden")
	assert.Zero(t, buf.Len())
	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}
