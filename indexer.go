package taotrace

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/flamewire/taotrace/chain"
	"github.com/flamewire/taotrace/event"
	"github.com/flamewire/taotrace/internal/obslog"
	"github.com/flamewire/taotrace/metrics"
	"github.com/flamewire/taotrace/retry"
)

// Indexer is the orchestrator: it runs the catch-up loop, then the live
// subscription loop, decoding each block's events and dispatching them
// through the configured handler graph with retry, circuit breaking, and
// checkpoint persistence.
type Indexer struct {
	cfg      Config
	breaker  *retry.CircuitBreaker
	throttle *throttler

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New builds an Indexer from opts, applying DefaultConfig first. It
// returns a *ConfigError if any required option is missing or any value
// is invalid; the engine never starts in that case.
func New(opts ...Option) (*Indexer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = obslog.Noop()
	}
	if cfg.metrics == nil {
		cfg.metrics = metrics.New(prometheus.NewRegistry())
	}
	if cfg.checkpointBackendName == "" && cfg.checkpoint != nil {
		cfg.checkpointBackendName = fmt.Sprintf("%T", cfg.checkpoint)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Indexer{
		cfg:      cfg,
		breaker:  retry.NewCircuitBreaker(cfg.circuitBreakerThresh, cfg.circuitBreakerReset),
		throttle: newThrottler(cfg.maxBlocksPerMinute),
		stopped:  make(chan struct{}),
	}, nil
}

// Run executes Phase I (initialization), Phase II (catch-up), and Phase
// III (live subscription) in order, blocking until ctx is cancelled,
// Shutdown is called, end_at_block is reached, or a terminal error occurs.
// A clean shutdown or reaching end_at_block returns nil.
func (idx *Indexer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	idx.mu.Lock()
	idx.cancel = cancel
	idx.mu.Unlock()
	defer close(idx.stopped)
	defer cancel()

	cursor, err := idx.initCursor(ctx)
	if err != nil {
		return err
	}
	idx.cfg.logger.Info("starting catch-up", zap.Uint64("cursor", cursor))

	cursor, err = idx.catchUp(ctx, cursor)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
	if idx.reachedEnd(cursor) {
		idx.cfg.logger.Info("end_at_block reached during catch-up; stopping")
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}

	idx.cfg.logger.Info("catch-up complete; starting live subscription", zap.Uint64("cursor", cursor))
	err = idx.liveSubscribe(ctx, cursor)
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// Shutdown requests a graceful stop: the in-flight block finishes and its
// checkpoint is written before Run returns. It blocks until Run has
// actually returned or ctx expires first.
func (idx *Indexer) Shutdown(ctx context.Context) error {
	idx.mu.Lock()
	cancel := idx.cancel
	idx.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-idx.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (idx *Indexer) reachedEnd(cursor uint64) bool {
	return idx.cfg.endAtBlock != nil && cursor > *idx.cfg.endAtBlock
}

// initCursor implements Phase I: load the checkpoint and resolve the
// starting cursor per the precedence in SPEC_FULL.md §4.6.
func (idx *Indexer) initCursor(ctx context.Context) (uint64, error) {
	block, ok, err := idx.loadCheckpoint(ctx)
	if err != nil {
		return 0, err
	}

	switch {
	case idx.cfg.startFromBlock != nil && (!ok || *idx.cfg.startFromBlock > block):
		return *idx.cfg.startFromBlock, nil
	case ok:
		return block + 1, nil
	default:
		return 0, nil
	}
}

// catchUp implements Phase II: a finite point-lookup loop from cursor to
// the tip observed once at the start of catch-up.
func (idx *Indexer) catchUp(ctx context.Context, cursor uint64) (uint64, error) {
	tip, _, err := idx.getFinalizedTip(ctx)
	if err != nil {
		return cursor, err
	}

	for cursor <= tip {
		if idx.reachedEnd(cursor) {
			return cursor, nil
		}
		if err := ctx.Err(); err != nil {
			return cursor, nil
		}

		hash, rawEvents, err := idx.getBlockAt(ctx, cursor)
		if err != nil {
			return cursor, err
		}
		if err := idx.processBlock(ctx, cursor, hash, rawEvents); err != nil {
			return cursor, err
		}
		cursor++
	}
	return cursor, nil
}

// liveSubscribe implements Phase III: subscribe to finalized blocks,
// filling any gap by point lookup and skipping notifications below the
// current cursor (that is, at or below the last checkpointed block).
func (idx *Indexer) liveSubscribe(ctx context.Context, cursor uint64) error {
	sub, err := idx.subscribeFinalized(ctx)
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case notif, open := <-sub.Notifications():
			if !open {
				select {
				case err, ok := <-sub.Err():
					if ok {
						return err
					}
				default:
				}
				return nil
			}

			switch {
			case notif.BlockNumber < cursor:
				idx.cfg.logger.Debug("skipping notification below cursor",
					zap.Uint64("notification_block", notif.BlockNumber), zap.Uint64("cursor", cursor))
				continue
			case notif.BlockNumber > cursor:
				for cursor < notif.BlockNumber {
					hash, rawEvents, err := idx.getBlockAt(ctx, cursor)
					if err != nil {
						return err
					}
					if err := idx.processBlock(ctx, cursor, hash, rawEvents); err != nil {
						return err
					}
					cursor++
					if idx.reachedEnd(cursor) {
						return nil
					}
				}
				fallthrough
			default:
				if err := idx.processBlock(ctx, notif.BlockNumber, notif.BlockHash, notif.RawEvents); err != nil {
					return err
				}
				cursor++
			}

			if idx.reachedEnd(cursor) {
				return nil
			}
		}
	}
}

// processBlock is the per-block critical section: decode, dispatch every
// event, dispatch handle_block, checkpoint, throttle.
func (idx *Indexer) processBlock(ctx context.Context, blockNumber uint64, hash event.Hash, rawEvents []chain.RawEvent) error {
	start := time.Now()
	blockCtx := event.NewContext(blockNumber, hash)

	events, err := idx.decodeEvents(ctx, blockNumber, rawEvents, blockCtx)
	if err != nil {
		return err
	}

	root := idx.cfg.rootHandler
	for _, ev := range events {
		if !root.EventFilter().Matches(ev) {
			continue
		}
		if err := root.HandleEvent(ctx, ev, blockCtx); err != nil {
			wrapped := &HandlerFailed{HandlerName: root.Name(), Block: blockNumber, Cause: err}
			root.HandleError(ctx, wrapped, blockCtx)
			idx.cfg.metrics.HandlerFailure(root.Name())
			return wrapped
		}
	}

	if err := root.HandleBlock(ctx, events, blockCtx); err != nil {
		wrapped := &HandlerFailed{HandlerName: root.Name(), Block: blockNumber, Cause: err}
		root.HandleError(ctx, wrapped, blockCtx)
		idx.cfg.metrics.HandlerFailure(root.Name())
		return wrapped
	}

	if err := idx.saveCheckpoint(ctx, blockNumber); err != nil {
		return err
	}

	idx.cfg.metrics.BlockProcessed(blockNumber)
	idx.cfg.metrics.ObserveBlockDuration(time.Since(start).Seconds())
	idx.cfg.metrics.CircuitBreakerState(circuitStateGauge(idx.breaker.CurrentState()))

	return idx.throttle.waitRemainder(ctx, start)
}

// decodeEvents converts raw client events into ChainEvents in ascending
// index order. By default an undecodable event is skipped and handle_error
// is invoked on the root handler for observability, per
// SPEC_FULL.md §7; WithStrictDecoding makes it abort the block instead.
func (idx *Indexer) decodeEvents(ctx context.Context, blockNumber uint64, rawEvents []chain.RawEvent, blockCtx *event.Context) ([]event.ChainEvent, error) {
	events := make([]event.ChainEvent, 0, len(rawEvents))
	index := 0
	for i, raw := range rawEvents {
		if raw.DecodeError != nil {
			decodeErr := &EventDecodingFailed{
				Pallet: raw.PalletName,
				Event:  raw.VariantName,
				Block:  blockNumber,
				Index:  i,
				Cause:  raw.DecodeError,
			}
			if idx.cfg.strictDecoding {
				wrapped := &HandlerFailed{HandlerName: idx.cfg.rootHandler.Name(), Block: blockNumber, Cause: decodeErr}
				idx.cfg.rootHandler.HandleError(ctx, wrapped, blockCtx)
				return nil, wrapped
			}
			idx.cfg.rootHandler.HandleError(ctx, decodeErr, blockCtx)
			continue
		}
		events = append(events, event.ChainEvent{
			PalletName:     raw.PalletName,
			VariantName:    raw.VariantName,
			Index:          index,
			Phase:          raw.Phase,
			ExtrinsicIndex: raw.ExtrinsicIndex,
			Payload:        raw.Payload,
		})
		index++
	}
	return events, nil
}

func circuitStateGauge(s retry.State) float64 {
	switch s {
	case retry.Closed:
		return 0
	case retry.HalfOpen:
		return 1
	default:
		return 2
	}
}
