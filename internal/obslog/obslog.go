// Package obslog builds the zap.Logger used for the engine's internal
// operational log lines: phase transitions and skipped live
// notifications. Retry attempts, circuit breaker trips, and checkpoint
// failures are not logged; they surface through Run's error and metrics.
package obslog

import "go.uber.org/zap"

// New builds a production zap.Logger (JSON encoding, info level) suitable
// for the engine's default logging. Callers that already run their own
// zap.Logger should use WithLogger instead of constructing a second one.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// Noop returns a logger that discards everything, used when the engine is
// constructed without an explicit logger and zap.NewProduction's stderr
// sink would be unwelcome (e.g. under test).
func Noop() *zap.Logger {
	return zap.NewNop()
}
