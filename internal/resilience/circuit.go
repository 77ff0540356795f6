package resilience

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed is the normal operating state, requests flow through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means too many failures, requests are rejected immediately.
	CircuitOpen
	// CircuitHalfOpen allows a single probe request to test recovery.
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the circuit is open.
var ErrCircuitOpen = eris.New("circuit breaker is open")

// Breaker is a per-endpoint circuit breaker for provider workflow calls.
// After FailureThreshold consecutive retryable failures it rejects calls for
// ResetTimeout, then lets one probe through.
type Breaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu                  sync.Mutex
	state               CircuitState
	consecutiveFailures int
	lastFailureTime     time.Time

	nowFunc func() time.Time
}

// NewBreaker creates a circuit breaker. Zero values select the defaults
// (5 consecutive failures, 30s reset).
func NewBreaker(failureThreshold int, resetTimeout time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &Breaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            CircuitClosed,
		nowFunc:          time.Now,
	}
}

// Allow reports whether a call may proceed, returning ErrCircuitOpen when the
// circuit is open and the reset timeout has not yet elapsed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.nowFunc().Sub(b.lastFailureTime) < b.resetTimeout {
			return ErrCircuitOpen
		}
		b.state = CircuitHalfOpen
	}
	return nil
}

// Record registers the outcome of a call. Only retryable failures count
// toward the threshold; terminal upstream faults (bad requests, workflow
// logic errors) do not indicate provider unavailability.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || !IsRetryable(err) {
		b.state = CircuitClosed
		b.consecutiveFailures = 0
		return
	}

	b.consecutiveFailures++
	b.lastFailureTime = b.nowFunc()

	if b.state == CircuitHalfOpen || b.consecutiveFailures >= b.failureThreshold {
		b.state = CircuitOpen
	}
}

// State returns the current circuit state.
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.nowFunc().Sub(b.lastFailureTime) >= b.resetTimeout {
		return CircuitHalfOpen
	}
	return b.state
}
