package taotrace

import (
	"time"

	"go.uber.org/zap"

	"github.com/flamewire/taotrace/checkpoint"
	"github.com/flamewire/taotrace/chain"
	"github.com/flamewire/taotrace/handler"
	"github.com/flamewire/taotrace/metrics"
	"github.com/flamewire/taotrace/retry"
)

// Option configures an Indexer at construction time.
type Option func(*Config)

// WithWebSocketURL sets the chain node's websocket endpoint. Required.
func WithWebSocketURL(raw string) Option {
	return func(c *Config) {
		u, err := ParseWebSocketURL(raw)
		if err != nil {
			// Deferred: an empty URL makes validate() fail New with a
			// websocket_url ConfigError, so construction still fails loudly
			// even though Option itself cannot return an error. The parse
			// error's own reason is not carried over.
			c.websocketURL = WebSocketURL{}
			return
		}
		c.websocketURL = u
	}
}

// WithChainClient sets the chain RPC transport. Required.
func WithChainClient(client chain.Client) Option {
	return func(c *Config) {
		c.chainClient = client
	}
}

// WithHandler sets the root handler invoked for every event and block.
// To compose multiple handlers, wrap them in a handler.Group first and
// pass the group here.
func WithHandler(h handler.Handler) Option {
	return func(c *Config) {
		c.rootHandler = h
	}
}

// WithCheckpointStore sets the checkpoint backend. Required.
func WithCheckpointStore(store checkpoint.Store) Option {
	return func(c *Config) {
		c.checkpoint = store
	}
}

// WithCheckpointBackendName overrides the backend label New would
// otherwise derive from the checkpoint.Store's Go type, used in
// CheckpointError.Backend.
func WithCheckpointBackendName(name string) Option {
	return func(c *Config) {
		c.checkpointBackendName = name
	}
}

// WithStartFromBlock overrides the resume point computed from the
// checkpoint. Only takes effect if it exceeds the persisted checkpoint.
func WithStartFromBlock(block uint64) Option {
	return func(c *Config) {
		c.startFromBlock = &block
	}
}

// WithEndAtBlock stops the engine once this block has been checkpointed,
// instead of running indefinitely.
func WithEndAtBlock(block uint64) Option {
	return func(c *Config) {
		c.endAtBlock = &block
	}
}

// WithMaxBlocksPerMinute throttles the engine to at most n blocks per
// minute. n must be >= 1; pass 0 (the default) for no throttling.
func WithMaxBlocksPerMinute(n int) Option {
	return func(c *Config) {
		c.maxBlocksPerMinute = n
	}
}

// WithRetryConfig overrides the default exponential backoff schedule used
// for chain-client calls and checkpoint saves.
func WithRetryConfig(cfg retry.Config) Option {
	return func(c *Config) {
		c.retryConfig = cfg
	}
}

// WithCircuitBreaker overrides the default circuit breaker thresholds.
func WithCircuitBreaker(failureThreshold int, resetTimeout time.Duration) Option {
	return func(c *Config) {
		c.circuitBreakerThresh = failureThreshold
		c.circuitBreakerReset = resetTimeout
	}
}

// WithCallTimeout overrides the per-call timeout applied to every
// chain-client call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.callTimeout = d
	}
}

// WithStrictDecoding makes an undecodable event abort and reprocess the
// whole block (as HandlerFailed) instead of the default skip-and-continue
// policy.
func WithStrictDecoding() Option {
	return func(c *Config) {
		c.strictDecoding = true
	}
}

// WithLogger sets the zap.Logger used for engine-internal operational
// logs. Defaults to a no-op logger if unset.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMetrics sets the Prometheus collector bundle. Defaults to a bundle
// registered against prometheus.NewRegistry() (not the global default
// registry) if unset.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Config) {
		c.metrics = m
	}
}
