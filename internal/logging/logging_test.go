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

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	assert.Same(t, slog.Default(), FromContext(context.Background()))

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-1")
	ctx = With(ctx, "user_id", "user-1")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))

	FromContext(ctx).Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "user-1", entry["user_id"])
}

func TestStartSpan(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, slog.LevelDebug))

	ctx, parent := StartSpan(ctx, "parent")
	traceID := TraceIDFromContext(ctx)
	parentID := SpanIDFromContext(ctx)
	require.NotEmpty(t, traceID)
	require.NotEmpty(t, parentID)

	childCtx, child := StartSpan(ctx, "child")
	assert.Equal(t, traceID, TraceIDFromContext(childCtx), "child shares the trace")
	assert.NotEqual(t, parentID, SpanIDFromContext(childCtx))

	child.End()
	parent.End()

	var entry map[string]any
	line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	require.NoError(t, json.Unmarshal(line, &entry))
	assert.Equal(t, "child", entry["span"])
	assert.Equal(t, "span completed", entry["msg"])
	assert.Equal(t, parentID, entry["parent_span_id"])

	var nilSpan *Span
	nilSpan.End()
}

func TestSpanFailureIsLoggedAtWarn(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, slog.LevelWarn))
	ctx = WithRequestID(ctx, "req-9")

	spanCtx, span := StartSpan(ctx, "seed")
	assert.Equal(t, "req-9", RequestIDFromContext(spanCtx), "request id survives spans")
	assert.Empty(t, SpanIDFromContext(ctx), "parent context is untouched")

	span.End()
	assert.Zero(t, buf.Len(), "success is below warn")

	span.EndErr(assert.AnError)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "span failed", entry["msg"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, TraceIDFromContext(spanCtx), entry["trace_id"])
}
