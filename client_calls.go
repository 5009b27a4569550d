package taotrace

import (
	"context"
	"errors"

	"github.com/flamewire/taotrace/chain"
	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/retry"
)

// convertRetryErr maps retry.Do's generic sentinel/wrapper errors onto
// this module's own IndexerError taxonomy, so callers of Run only ever
// see *CircuitOpen / *RetriesExhausted / the concrete cause, never a
// retry-package type.
func convertRetryErr(err error, breakerName string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, retry.ErrCircuitOpen) {
		return &CircuitOpen{Breaker: breakerName}
	}
	var exhausted *retry.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		return &RetriesExhausted{Attempts: exhausted.Attempts, Cause: exhausted.Cause}
	}
	return err
}

func (idx *Indexer) withCallTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if idx.cfg.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, idx.cfg.callTimeout)
}

// wrapCallErr classifies a failed call's error against the context it ran
// under: a call that failed because its own per-call deadline (not the
// caller's outer ctx) expired is a Timeout, retryable independently of
// whatever the underlying client returned; anything else falls through to
// fallback.
func wrapCallErr(callCtx context.Context, op string, fallback error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &Timeout{Op: op}
	}
	return fallback
}

func (idx *Indexer) getFinalizedTip(ctx context.Context) (uint64, event.Hash, error) {
	type tip struct {
		block uint64
		hash  event.Hash
	}
	result, err := retry.Do(ctx, idx.cfg.retryConfig, idx.breaker, func(ctx context.Context) (tip, error) {
		callCtx, cancel := idx.withCallTimeout(ctx)
		defer cancel()
		block, hash, err := idx.cfg.chainClient.GetFinalizedTip(callCtx)
		if err != nil {
			return tip{}, wrapCallErr(callCtx, "get_finalized_tip", &ConnectionFailed{URL: idx.cfg.websocketURL.String(), Cause: err})
		}
		return tip{block: block, hash: hash}, nil
	})
	if err != nil {
		idx.countRetryOutcome(err)
		return 0, event.Hash{}, convertRetryErr(err, "chain-client")
	}
	return result.block, result.hash, nil
}

func (idx *Indexer) getBlockAt(ctx context.Context, blockNumber uint64) (event.Hash, []chain.RawEvent, error) {
	type fetched struct {
		hash      event.Hash
		rawEvents []chain.RawEvent
	}
	result, err := retry.Do(ctx, idx.cfg.retryConfig, idx.breaker, func(ctx context.Context) (fetched, error) {
		callCtx, cancel := idx.withCallTimeout(ctx)
		defer cancel()
		hash, rawEvents, err := idx.cfg.chainClient.GetBlockAt(callCtx, blockNumber)
		if err != nil {
			return fetched{}, wrapCallErr(callCtx, "get_block_at", &BlockFetchFailed{BlockNumber: blockNumber, Cause: err})
		}
		return fetched{hash: hash, rawEvents: rawEvents}, nil
	})
	if err != nil {
		idx.countRetryOutcome(err)
		return event.Hash{}, nil, convertRetryErr(err, "chain-client")
	}
	return result.hash, result.rawEvents, nil
}

// subscribeFinalized is not retried: a Subscription is a long-lived
// stream, not a single call, and losing it mid-stream surfaces through
// sub.Err() instead of this function's return value.
func (idx *Indexer) subscribeFinalized(ctx context.Context) (chain.Subscription, error) {
	sub, err := idx.cfg.chainClient.SubscribeFinalized(ctx)
	if err != nil {
		return nil, &ConnectionFailed{URL: idx.cfg.websocketURL.String(), Cause: err}
	}
	return sub, nil
}

func (idx *Indexer) loadCheckpoint(ctx context.Context) (uint64, bool, error) {
	block, ok, err := idx.cfg.checkpoint.Load(ctx)
	if err != nil {
		return 0, false, &CheckpointError{Operation: "load", Backend: idx.backendName(), Cause: err}
	}
	return block, ok, nil
}

func (idx *Indexer) saveCheckpoint(ctx context.Context, block uint64) error {
	_, err := retry.Do(ctx, idx.cfg.retryConfig, idx.breaker, func(ctx context.Context) (struct{}, error) {
		// The save itself ignores cancellation so a Shutdown arriving
		// mid-block still commits that block's checkpoint; only the retry
		// sleeps between attempts are cut short.
		if err := idx.cfg.checkpoint.Save(context.WithoutCancel(ctx), block); err != nil {
			return struct{}{}, &CheckpointError{Operation: "save", Backend: idx.backendName(), Cause: err}
		}
		return struct{}{}, nil
	})
	if err != nil {
		idx.countRetryOutcome(err)
		return convertRetryErr(err, "checkpoint-store")
	}
	return nil
}

func (idx *Indexer) backendName() string {
	return idx.cfg.checkpointBackendName
}

func (idx *Indexer) countRetryOutcome(err error) {
	if errors.Is(err, retry.ErrCircuitOpen) {
		return
	}
	var exhausted *retry.RetriesExhaustedError
	if errors.As(err, &exhausted) {
		idx.cfg.metrics.RetriesExhausted()
		return
	}
	idx.cfg.metrics.RetryAttempt()
}
