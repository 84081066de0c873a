package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestSlogLogger_Info(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info(context.Background(), "hello", "k", "v")

	m := decodeLine(t, buf)
	assert.Equal(t, "hello", m["msg"])
	assert.Equal(t, "v", m["k"])
	assert.Equal(t, "INFO", m["level"])
}

func TestSlogLogger_With(t *testing.T) {
	l, buf := newTestLogger(t)
	child := l.With("module", "engine")
	child.Warn(context.Background(), "warned")

	m := decodeLine(t, buf)
	assert.Equal(t, "engine", m["module"])
	assert.Equal(t, "WARN", m["level"])
}

func TestSlogLogger_Levels(t *testing.T) {
	l, buf := newTestLogger(t)

	l.Debug(context.Background(), "d")
	l.Error(context.Background(), "e")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
}
