// Package logging carries a structured slog logger and correlation ids
// (request, trace, span) on the context.
package logging

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	idsKey
)

// ids are the correlation identifiers attached to one unit of work.
type ids struct {
	request string
	trace   string
	span    string
}

func idsFrom(ctx context.Context) ids {
	if ctx == nil {
		return ids{}
	}
	v, _ := ctx.Value(idsKey).(ids)
	return v
}

func withIDs(ctx context.Context, update func(*ids)) context.Context {
	v := idsFrom(ctx)
	update(&v)
	return context.WithValue(ctx, idsKey, v)
}

// With returns a context whose logger carries the extra attributes.
func With(ctx context.Context, args ...any) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(args...))
}

// WithLogger stores logger on ctx. A nil logger leaves ctx unchanged.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger stored on ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return slog.Default()
}

// WithRequestID records the id assigned to the inbound HTTP request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return withIDs(ctx, func(v *ids) { v.request = requestID })
}

// RequestIDFromContext returns the request id, or "".
func RequestIDFromContext(ctx context.Context) string { return idsFrom(ctx).request }

// TraceIDFromContext returns the trace id opened by the outermost span, or "".
func TraceIDFromContext(ctx context.Context) string { return idsFrom(ctx).trace }

// SpanIDFromContext returns the id of the innermost open span, or "".
func SpanIDFromContext(ctx context.Context) string { return idsFrom(ctx).span }
