package wire

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 10 * time.Minute

type sweepFunc func(ctx context.Context) (int64, error)

// runSweeper deletes expired idempotency keys every interval until ctx is done.
// A failed sweep is logged and retried on the next tick.
func runSweeper(ctx context.Context, interval time.Duration, sweep sweepFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweep(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "idempotency sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.InfoContext(ctx, "idempotency sweep removed expired keys", "count", n)
			}
		}
	}
}
