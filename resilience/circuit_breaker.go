package resilience

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen blocks all requests.
	StateOpen
	// StateHalfOpen allows requests through to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// halfOpenSuccessCap bounds the number of successes required to close
// the circuit from half-open: min(FailureThreshold, halfOpenSuccessCap).
const halfOpenSuccessCap = 3

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in logs and state-change callbacks.
	Name string `yaml:"name" mapstructure:"name"`

	// Enabled turns the breaker on. A disabled breaker always permits
	// execution but keeps recording successes and failures, so it can be
	// enabled later. Counts accumulated while disabled trigger no
	// transitions.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// FailureThreshold is the consecutive-failure count that opens the
	// circuit. Defaults to 5.
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"omitempty,min=1"`

	// RecoveryTimeout is how long the circuit stays open before the next
	// CanExecute probes half-open. Defaults to 30s, minimum 1s.
	RecoveryTimeout time.Duration `yaml:"recovery_timeout" mapstructure:"recovery_timeout" validate:"omitempty,min=1s"`

	// OnStateChange is called on every state transition.
	OnStateChange func(name string, from, to State) `yaml:"-" mapstructure:"-"`
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		Enabled:          true,
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

// Snapshot is a point-in-time view of breaker state.
type Snapshot struct {
	State         State
	Failures      int
	Successes     int
	LastFailureAt time.Time
	LastSuccessAt time.Time
}

// CircuitBreaker isolates a systematically failing dependency. One
// breaker guards one logical remote dependency and lives for the
// lifetime of the client that owns it.
//
// Transitions:
//   - closed -> open once Failures reaches FailureThreshold. A success
//     while closed decrements the failure count by one instead of
//     resetting it, so transient blips decay gradually.
//   - open -> half-open lazily, on the first CanExecute call after
//     RecoveryTimeout has elapsed since the last failure.
//   - half-open -> open on any failure.
//   - half-open -> closed after min(FailureThreshold, 3) successes.
type CircuitBreaker struct {
	cfg BreakerConfig

	mu            sync.Mutex
	state         State
	failures      int
	successes     int
	lastFailureAt time.Time
	lastSuccessAt time.Time
}

// NewCircuitBreaker creates a circuit breaker.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout < time.Second {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// CanExecute reports whether a call may proceed. For an open circuit
// whose recovery timeout has elapsed, the check itself performs the
// open -> half-open transition. A disabled breaker always returns true.
func (cb *CircuitBreaker) CanExecute() bool {
	if !cb.cfg.Enabled {
		return true
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if time.Since(cb.lastFailureAt) >= cb.cfg.RecoveryTimeout {
			cb.toState(StateHalfOpen)
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess records a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastSuccessAt = time.Now()
	if !cb.cfg.Enabled {
		if cb.failures > 0 {
			cb.failures--
		}
		return
	}

	switch cb.state {
	case StateClosed:
		if cb.failures > 0 {
			cb.failures--
		}
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= min(cb.cfg.FailureThreshold, halfOpenSuccessCap) {
			cb.toState(StateClosed)
		}
	}
}

// RecordFailure records a failed call.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureAt = time.Now()
	if !cb.cfg.Enabled {
		return
	}

	switch cb.state {
	case StateClosed:
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.toState(StateOpen)
		}
	case StateHalfOpen:
		// No leniency while probing.
		cb.toState(StateOpen)
	}
}

// RecoveryEstimate returns the time remaining until an open circuit
// allows the next attempt. It returns zero when calls may already
// proceed.
func (cb *CircuitBreaker) RecoveryEstimate() time.Duration {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.cfg.Enabled || cb.state != StateOpen {
		return 0
	}
	remaining := cb.cfg.RecoveryTimeout - time.Since(cb.lastFailureAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// State returns the current state without triggering transitions.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Snapshot returns a point-in-time view of the breaker counters.
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Snapshot{
		State:         cb.state,
		Failures:      cb.failures,
		Successes:     cb.successes,
		LastFailureAt: cb.lastFailureAt,
		LastSuccessAt: cb.lastSuccessAt,
	}
}

// Reset returns the breaker to closed with zeroed counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.toState(StateClosed)
	cb.failures = 0
	cb.successes = 0
}

// toState transitions to a new state. Callers must hold the mutex.
func (cb *CircuitBreaker) toState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	switch to {
	case StateClosed:
		cb.failures = 0
		cb.successes = 0
	case StateHalfOpen:
		cb.successes = 0
	}

	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, from, to)
	}
}
