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

// Config holds every setting New needs to build an Indexer. Build it with
// Option values rather than constructing it directly; unexported fields
// carry derived state option application depends on.
type Config struct {
	websocketURL WebSocketURL

	chainClient chain.Client
	rootHandler handler.Handler
	checkpoint  checkpoint.Store
	// checkpointBackendName labels CheckpointError.Backend; New derives it
	// from the concrete Store's type if WithCheckpointBackendName isn't
	// used to override it.
	checkpointBackendName string

	startFromBlock *uint64
	endAtBlock     *uint64

	maxBlocksPerMinute int

	retryConfig           retry.Config
	circuitBreakerThresh  int
	circuitBreakerReset   time.Duration

	callTimeout time.Duration

	// strictDecoding, when true, treats EventDecodingFailed as
	// HandlerFailed (abort the block) instead of the default
	// skip-and-continue policy.
	strictDecoding bool

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// DefaultConfig returns the engine's documented defaults: unthrottled,
// retry.DefaultConfig's backoff schedule, a circuit breaker that trips
// after 5 consecutive failures and probes again after 60s, and a 30s
// per-call chain-client timeout.
func DefaultConfig() Config {
	return Config{
		retryConfig:          retry.DefaultConfig(),
		circuitBreakerThresh: 5,
		circuitBreakerReset:  60 * time.Second,
		callTimeout:          30 * time.Second,
	}
}

// validate checks the required fields and invariants New relies on,
// returning a *ConfigError for the first problem found.
func (c Config) validate() error {
	if c.websocketURL.String() == "" {
		return &ConfigError{Field: "websocket_url", Reason: "required"}
	}
	if c.chainClient == nil {
		return &ConfigError{Field: "chain_client", Reason: "required"}
	}
	if c.rootHandler == nil {
		return &ConfigError{Field: "handler", Reason: "at least one handler or handler group is required"}
	}
	if c.checkpoint == nil {
		return &ConfigError{Field: "storage_backend", Reason: "required"}
	}
	if c.maxBlocksPerMinute < 0 {
		return &ConfigError{Field: "max_blocks_per_minute", Reason: "must be >= 0"}
	}
	if c.startFromBlock != nil && c.endAtBlock != nil && *c.startFromBlock > *c.endAtBlock {
		return &ConfigError{Field: "end_at_block", Reason: "must be >= start_from_block"}
	}
	if c.retryConfig.InitialDelay > c.retryConfig.MaxDelay {
		return &ConfigError{Field: "retry_config", Reason: "initial_delay must not exceed max_delay"}
	}
	return nil
}
