package retry

import (
	"sync"
	"time"
)

// State is one of the circuit breaker's three states.
type State int

const (
	// Closed means the breaker is healthy; calls are allowed through.
	Closed State = iota
	// Open means the failure threshold has been reached; calls fail fast.
	Open
	// HalfOpen means the reset timeout has elapsed and a single probe call
	// is being allowed through to test whether the downstream recovered.
	HalfOpen
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker gates calls to an external collaborator (the chain client,
// the checkpoint store) based on recent failure history. Closed: calls pass.
// Open: calls fail fast until resetTimeout elapses. HalfOpen: exactly one
// caller is let through to probe recovery.
//
// All transitions are serialized under a single mutex so concurrent callers
// can never both observe HalfOpen as permissive at once.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold    int
	resetTimeout time.Duration

	state       State
	failures    int
	lastFailure time.Time
}

// NewCircuitBreaker creates a breaker that opens after threshold consecutive
// failures and allows a probe call once resetTimeout has elapsed since the
// tripping failure.
func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold:    threshold,
		resetTimeout: resetTimeout,
	}
}

// IsOpen reports whether calls should currently be rejected. Calling IsOpen
// while in the Open state past resetTimeout atomically transitions the
// breaker to HalfOpen and returns false, admitting the caller as the single
// probe.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed:
		return false
	case Open:
		if time.Since(cb.lastFailure) < cb.resetTimeout {
			return true
		}
		cb.state = HalfOpen
		return false
	case HalfOpen:
		// The probe was already admitted by the Open -> HalfOpen
		// transition; everyone else waits for its outcome.
		return true
	default:
		return true
	}
}

// RecordSuccess reports a successful call, closing the breaker and
// resetting its failure count.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = Closed
}

// RecordFailure reports a failed call. In Closed state, it increments the
// failure count and trips to Open once the count reaches the threshold. In
// HalfOpen state, the failed probe immediately re-opens the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailure = time.Now()

	switch cb.state {
	case HalfOpen:
		cb.state = Open
		return
	default:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.state = Open
		}
	}
}

// CurrentState returns the breaker's current state, for observability.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
