package network

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call without trying it.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of the circuit breaker
type CircuitState int32

const (
	// CircuitClosed allows requests to pass through
	CircuitClosed CircuitState = iota
	// CircuitOpen blocks all requests
	CircuitOpen
	// CircuitHalfOpen allows a single probe request
	CircuitHalfOpen
)

// String returns string representation of circuit state
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

// CircuitBreaker stops calling the risk authority after maxFailures
// consecutive failures and lets one probe through once resetTimeout has
// elapsed. A nil *CircuitBreaker allows every call.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu            sync.Mutex
	state         CircuitState
	failures      int
	lastFailTime  time.Time
	probeInFlight bool
	onStateChange func(from, to CircuitState)
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        CircuitClosed,
	}
}

// SetStateChangeHandler sets a callback for state changes. The callback runs
// on its own goroutine.
func (cb *CircuitBreaker) SetStateChangeHandler(handler func(from, to CircuitState)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = handler
}

// Call executes fn if the circuit allows it and records the outcome.
// Failures for which countable returns false (for example a 404 from a
// healthy server) do not move the breaker. In half-open such a failure
// releases the probe slot without closing the circuit.
func (cb *CircuitBreaker) Call(fn func() error, countable func(error) bool) error {
	if !cb.Allow() {
		return ErrCircuitOpen
	}
	err := fn()
	if err != nil && countable != nil && !countable(err) {
		cb.ignore()
		return err
	}
	cb.Record(err)
	return err
}

// ignore ends an attempt whose outcome says nothing about the remote side.
func (cb *CircuitBreaker) ignore() {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitHalfOpen {
		cb.probeInFlight = false
	}
}

// Allow reports whether a call may be attempted now.
func (cb *CircuitBreaker) Allow() bool {
	if cb == nil {
		return true
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailTime) < cb.resetTimeout {
			return false
		}
		cb.transitionLocked(CircuitHalfOpen)
		cb.probeInFlight = true
		return true
	case CircuitHalfOpen:
		if cb.probeInFlight {
			return false
		}
		cb.probeInFlight = true
		return true
	default:
		return false
	}
}

// Record records the result of an attempt
func (cb *CircuitBreaker) Record(err error) {
	if cb == nil {
		return
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == CircuitHalfOpen {
			cb.probeInFlight = false
			cb.transitionLocked(CircuitClosed)
		}
		return
	}

	cb.failures++
	cb.lastFailTime = cb.now()
	switch cb.state {
	case CircuitClosed:
		if cb.failures >= cb.maxFailures {
			cb.transitionLocked(CircuitOpen)
		}
	case CircuitHalfOpen:
		// a failed probe reopens immediately
		cb.probeInFlight = false
		cb.transitionLocked(CircuitOpen)
	}
}

// transitionLocked transitions to a new state (must hold lock)
func (cb *CircuitBreaker) transitionLocked(newState CircuitState) {
	oldState := cb.state
	if oldState == newState {
		return
	}
	cb.state = newState
	if cb.onStateChange != nil {
		go cb.onStateChange(oldState, newState)
	}
}

// State returns the current state of the circuit breaker
func (cb *CircuitBreaker) State() CircuitState {
	if cb == nil {
		return CircuitClosed
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns current statistics
func (cb *CircuitBreaker) Stats() CircuitBreakerStats {
	if cb == nil {
		return CircuitBreakerStats{State: CircuitClosed, StateName: CircuitClosed.String()}
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitBreakerStats{
		State:        cb.state,
		StateName:    cb.state.String(),
		Failures:     cb.failures,
		LastFailTime: cb.lastFailTime,
	}
}

// CircuitBreakerStats contains circuit breaker statistics
type CircuitBreakerStats struct {
	State        CircuitState `json:"-"`
	StateName    string       `json:"state"`
	Failures     int          `json:"failures"`
	LastFailTime time.Time    `json:"last_fail_time,omitempty"`
}
