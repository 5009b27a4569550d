// Package metrics exposes the engine's Prometheus instrumentation: blocks
// processed, the current watermark, handler and retry failures, and
// circuit breaker state.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every collector the engine reports against. Unlike a
// package-level global registry, each Metrics is bound to the
// *prometheus.Registerer supplied at construction, so multiple Indexer
// instances (as in tests) don't collide on duplicate registration.
type Metrics struct {
	blocksProcessed  prometheus.Counter
	lastIndexedBlock prometheus.Gauge
	handlerFailures  *prometheus.CounterVec
	retryAttempts    prometheus.Counter
	retriesExhausted prometheus.Counter
	circuitState     prometheus.Gauge
	blockDuration    prometheus.Histogram
}

// New registers the engine's collectors against reg and returns the
// bundle. Pass prometheus.NewRegistry() in tests to avoid colliding with
// the global default registry; pass prometheus.DefaultRegisterer in
// production to expose metrics on the usual /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		blocksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "taotrace_blocks_processed_total",
			Help: "Total number of blocks whose checkpoint was successfully committed.",
		}),
		lastIndexedBlock: factory.NewGauge(prometheus.GaugeOpts{
			Name: "taotrace_last_indexed_block",
			Help: "The highest block number successfully checkpointed.",
		}),
		handlerFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taotrace_handler_failures_total",
			Help: "Total number of handler errors observed via handle_error, by handler name.",
		}, []string{"handler"}),
		retryAttempts: factory.NewCounter(prometheus.CounterOpts{
			Name: "taotrace_retry_attempts_total",
			Help: "Total number of retry attempts made by retry.Do.",
		}),
		retriesExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "taotrace_retries_exhausted_total",
			Help: "Total number of operations that exhausted their retry budget.",
		}),
		circuitState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "taotrace_circuit_breaker_state",
			Help: "Circuit breaker state: 0=closed, 1=half-open, 2=open.",
		}),
		blockDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "taotrace_block_processing_duration_seconds",
			Help:    "Wall time spent in process_block, including handler dispatch and checkpoint save.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// BlockProcessed records a successfully checkpointed block and its new
// watermark.
func (m *Metrics) BlockProcessed(blockNumber uint64) {
	m.blocksProcessed.Inc()
	m.lastIndexedBlock.Set(float64(blockNumber))
}

// HandlerFailure records a handle_error invocation for the named handler.
func (m *Metrics) HandlerFailure(handlerName string) {
	m.handlerFailures.WithLabelValues(handlerName).Inc()
}

// RetryAttempt records one retry attempt (not counting the initial try).
func (m *Metrics) RetryAttempt() {
	m.retryAttempts.Inc()
}

// RetriesExhausted records an operation that ran out of retry budget.
func (m *Metrics) RetriesExhausted() {
	m.retriesExhausted.Inc()
}

// CircuitBreakerState mirrors the breaker's retry.State as a gauge value
// (0=closed, 1=half-open, 2=open) for dashboarding.
func (m *Metrics) CircuitBreakerState(value float64) {
	m.circuitState.Set(value)
}

// ObserveBlockDuration records how long process_block took for one block.
func (m *Metrics) ObserveBlockDuration(seconds float64) {
	m.blockDuration.Observe(seconds)
}
