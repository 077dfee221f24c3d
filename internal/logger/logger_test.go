package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger_AddsTraceIDs(t *testing.T) {
	t.Setenv("ENV", "dev")
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.InfoContext(ctx, "allotment created", "student_id", "STU100")

	out := buf.String()
	assert.Contains(t, out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
	assert.Contains(t, out, `"span_id":"00f067aa0ba902b7"`)
	assert.Contains(t, out, `"student_id":"STU100"`)
}

func TestLogger_AddsRequestID(t *testing.T) {
	t.Setenv("ENV", "dev")
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info").With("service", "hostel")

	ctx := context.WithValue(context.Background(), chimw.RequestIDKey, "host/abc-000001")
	log.InfoContext(ctx, "room change approved")
	log.Info("no request")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"request_id":"host/abc-000001"`)
	assert.Contains(t, lines[0], `"service":"hostel"`)
	assert.NotContains(t, lines[1], "request_id")
}

func TestLogger_LevelFiltering(t *testing.T) {
	t.Setenv("ENV", "local")
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "\x1b[31mshown\x1b[0m")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLevel("WARNING", slog.LevelInfo))
	assert.Equal(t, slog.LevelInfo, parseLevel("", slog.LevelInfo))
}
