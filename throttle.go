package taotrace

import (
	"context"
	"time"
)

// throttler enforces a minimum per-block wall-clock interval. It is not a
// token-bucket rate limiter (golang.org/x/time/rate would overshoot on a
// burst after a slow block); the engine only ever needs "don't start the
// next block sooner than budget after the last one started", which
// measuring from the finished block's own start time expresses directly.
type throttler struct {
	interval time.Duration
}

// newThrottler returns a throttler enforcing maxBlocksPerMinute, or a
// no-op throttler if maxBlocksPerMinute is 0 (unthrottled).
func newThrottler(maxBlocksPerMinute int) *throttler {
	if maxBlocksPerMinute <= 0 {
		return &throttler{}
	}
	return &throttler{interval: time.Minute / time.Duration(maxBlocksPerMinute)}
}

// waitRemainder sleeps off whatever is left of the per-block budget after
// a block that started at blockStart and is now complete. If processing
// already consumed the whole budget, it returns immediately without
// trying to "catch up" on a later block.
func (t *throttler) waitRemainder(ctx context.Context, blockStart time.Time) error {
	if t.interval <= 0 {
		return nil
	}
	remaining := t.interval - time.Since(blockStart)
	if remaining <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(remaining):
		return nil
	}
}
