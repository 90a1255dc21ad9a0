package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestSpanAnnotator_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&spanAnnotator{inner: slog.NewJSONHandler(&buf, nil)})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "inside span")
	assert.Contains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), "span_id")

	buf.Reset()
	log.Info("outside span")
	assert.NotContains(t, buf.String(), "trace_id")
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(multiHandler{
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	})

	log.Info("fanned out")
	assert.Contains(t, a.String(), "fanned out")
	assert.Contains(t, b.String(), "fanned out")
}
