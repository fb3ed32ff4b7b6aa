package logging

import (
	"context"
	"log/slog"
	"time"
)

// Span times a logical unit of work, typically an outbound call to a
// generation backend.
type Span struct {
	logger *slog.Logger
	start  time.Time
}

// StartSpan enriches the context logger with the operation name and returns
// the derived context together with the span handle.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := FromContext(ctx).With(slog.String("op", name))
	ctx = WithLogger(ctx, logger)

	return ctx, &Span{logger: logger, start: time.Now()}
}

// End emits a completion entry with the elapsed duration.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.logger.Info("op completed", slog.Duration("duration", time.Since(s.start)))
}
