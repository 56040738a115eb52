package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestJSONLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Format: "json", Out: &buf})

	l.Debug(context.Background(), "hidden")
	l.With(map[string]interface{}{"component": "session"}).
		Warn(context.Background(), "stored session unreadable", map[string]interface{}{"key": "currentUser"})
	l.Error(context.Background(), "login failed", errors.New("Invalid credentials"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "session", lines[0]["component"])
	assert.Equal(t, "currentUser", lines[0]["key"])
	assert.Equal(t, "Invalid credentials", lines[1]["error"])
}

func TestTraceInfoAttached(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Format: "json", Out: &buf})

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	l.Info(ctx, "inside span")
	span.End()

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, span.SpanContext().TraceID().String(), lines[0]["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), lines[0]["span_id"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().With(map[string]interface{}{"a": 1}).Info(context.Background(), "x")
	})
}
