package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCircuitOpen is returned by Do without invoking the thunk when the
// supplied breaker is open.
var ErrCircuitOpen = errors.New("retry: circuit open")

// RetriesExhaustedError wraps the last error observed after MaxRetries
// unsuccessful retries (MaxRetries+1 attempts in all).
type RetriesExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retry: exhausted after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Cause
}

// classifier reports whether an error should trigger another retry attempt.
// Errors that don't implement it are treated as retryable, matching the
// default in original_source/src/retry.rs's is_retryable_error fallback arm.
type classifier interface {
	Retryable() bool
}

// IsRetryable reports whether err should trigger another attempt. Errors
// that implement `Retryable() bool` (the IndexerError taxonomy does) are
// classified by their own rule; anything else defaults to retryable.
func IsRetryable(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.Retryable()
	}
	return true
}

// Do executes thunk, retrying according to cfg on retryable errors while
// cb permits calls. It returns immediately with ErrCircuitOpen if cb is
// open, without invoking thunk. On a non-retryable error it records the
// breaker failure and returns that error immediately. After cfg.MaxRetries
// unsuccessful retries (cfg.MaxRetries+1 attempts) it returns the last error wrapped in
// RetriesExhaustedError. It respects ctx cancellation during backoff sleeps.
func Do[T any](ctx context.Context, cfg Config, cb *CircuitBreaker, thunk func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if cb.IsOpen() {
		return zero, ErrCircuitOpen
	}

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := thunk(ctx)
		if err == nil {
			cb.RecordSuccess()
			return result, nil
		}

		lastErr = err
		cb.RecordFailure()

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		delay := cfg.delay(attempt + 1)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}

		if cb.IsOpen() {
			return zero, ErrCircuitOpen
		}
	}

	return zero, &RetriesExhaustedError{Attempts: cfg.MaxRetries + 1, Cause: lastErr}
}
