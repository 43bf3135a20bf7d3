package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capturingLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(buf, nil))}
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestWithComponentAttachesField(t *testing.T) {
	var buf bytes.Buffer
	log := capturingLogger(&buf).WithComponent("backend")

	log.Info("connected")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "backend", rec["component"])
	assert.Equal(t, "connected", rec["msg"])
}

func TestWithErrorAttachesField(t *testing.T) {
	var buf bytes.Buffer
	log := capturingLogger(&buf).WithError(errors.New("dial refused"))

	log.Error("backend unreachable")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "dial refused", rec["error"])
}

func TestNewRespectsLevel(t *testing.T) {
	log := New(slog.LevelWarn, false)
	ctx := context.Background()
	assert.False(t, log.Enabled(ctx, slog.LevelInfo))
	assert.True(t, log.Enabled(ctx, slog.LevelWarn))
}
