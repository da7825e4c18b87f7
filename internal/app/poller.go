package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/larder/internal/inventory"
)

// maxBackoff caps the wait between refreshes after repeated failures.
const maxBackoff = 5 * time.Minute

// StartPoller launches a background goroutine that re-fetches the inventory
// every interval. It returns immediately. A tick is skipped while local
// edits are waiting to be confirmed so they are never overwritten.
func StartPoller(ctx context.Context, gw *inventory.Gateway, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	go func() {
		failures := 0
		for {
			wait := calculateBackoff(failures, interval)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			skipped, err := pollOnce(ctx, gw)
			switch {
			case skipped:
				logger.Debug("refresh skipped, local edits pending")
			case err != nil:
				failures++
				logger.Warn("background refresh failed",
					zap.Int("failures", failures),
					zap.Duration("next_in", calculateBackoff(failures, interval)),
					zap.Error(err))
			default:
				failures = 0
			}
		}
	}()
}

// pollOnce refreshes the store unless it has pending edits.
func pollOnce(ctx context.Context, gw *inventory.Gateway) (skipped bool, err error) {
	if gw.Store().Pending() {
		return true, nil
	}
	return false, gw.FetchAll(ctx)
}

// calculateBackoff doubles the base interval for each consecutive failure,
// up to maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
