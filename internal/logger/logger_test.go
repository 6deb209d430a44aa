package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestNew_JSONAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Env: "prod", Writer: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "attendance recorded", "course_id", "c-1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "attendance recorded", entry["msg"])
	assert.Equal(t, "c-1", entry["course_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestNew_TextColorsErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Env: "local", Writer: &buf})

	log.Error("store unavailable", "table", "students")
	log.Info("plain")

	out := buf.String()
	assert.Contains(t, out, "\x1b[31mstore unavailable\x1b[0m")
	assert.Contains(t, out, "table=students")
	assert.Contains(t, out, "msg=plain")
	assert.NotContains(t, out, "trace_id")
}
