package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("visible", "user", "alice")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "alice", entry["user"])
}

func TestNewLogger_TextAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "WARN", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
}

func TestNewLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "debug", "json").Debug("details")
	assert.Contains(t, buf.String(), "details")
}
