package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/templatehub/backend/internal/logging"
)

type sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// runSweeper evicts expired sessions every interval until ctx is done.
func runSweeper(ctx context.Context, s sweeper, interval time.Duration) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.Sweep(ctx)
			if err != nil {
				logger.Warn("session sweep failed", slog.String("error", err.Error()))
				continue
			}
			if removed > 0 {
				logger.Info("expired sessions swept", slog.Int("removed", removed))
			}
		}
	}
}
