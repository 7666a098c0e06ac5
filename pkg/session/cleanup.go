package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/authflow/pkg/logger"
)

// DeleteExpiredSessions removes every session that has expired by now.
func (m *Manager) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := m.tracer.Start(ctx, "session.DeleteExpired")
	defer span.End()

	n, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		recordError(span, err)
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

// RunCleanup sweeps expired sessions every interval until ctx is done.
// A non-positive interval disables the sweep and returns immediately.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n, err := m.DeleteExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.ErrorContext(ctx, "session sweep failed", logger.Error(err), logger.Component("session"))
				continue
			}
			if n > 0 {
				m.logger.InfoContext(ctx, "expired sessions removed",
					logger.Component("session"),
					logger.Event("sweep"),
					logger.Duration(time.Since(start)),
					slog.Int64("removed", n),
				)
			}
		}
	}
}
