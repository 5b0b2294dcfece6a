package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/attaboy/strokecheck/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	evt := domain.NewUserEvent(domain.EventUserLoggedIn, "alice")
	value, err := json.Marshal(evt)
	require.NoError(t, err)

	handle(logger, kafka.Message{Value: value, Offset: 3})
	assert.Contains(t, buf.String(), `"msg":"audit event"`)
	assert.Contains(t, buf.String(), `"username":"alice"`)
	assert.Contains(t, buf.String(), string(domain.EventUserLoggedIn))
}

func TestHandle_BadMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handle(logger, kafka.Message{Value: []byte("not json"), Offset: 9})
	assert.Contains(t, buf.String(), "skipping audit message")
	assert.Contains(t, buf.String(), `"offset":9`)
}
