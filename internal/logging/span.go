package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one named operation and logs its outcome.
type Span struct {
	logger *slog.Logger
	start  time.Time
}

// StartSpan opens a span named name. The first span on a context also starts
// a trace; nested spans record their parent.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	parent := idsFrom(ctx)
	spanID := uuid.NewString()
	attrs := []any{slog.String("span", name), slog.String("span_id", spanID)}

	traceID := parent.trace
	if traceID == "" {
		traceID = uuid.NewString()
		attrs = append(attrs, slog.String("trace_id", traceID))
	}
	if parent.span != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent.span))
	}

	logger := FromContext(ctx).With(attrs...)
	ctx = withIDs(ctx, func(v *ids) {
		v.trace = traceID
		v.span = spanID
	})
	return WithLogger(ctx, logger), &Span{logger: logger, start: time.Now()}
}

// End closes a span that succeeded.
func (s *Span) End() {
	s.EndErr(nil)
}

// EndErr closes the span. A non-nil err is logged at warn level.
func (s *Span) EndErr(err error) {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if err != nil {
		s.logger.Warn("span failed", elapsed, slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("span completed", elapsed)
}
