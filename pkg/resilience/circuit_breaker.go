package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CircuitState represents the current state of a circuit breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
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

// ErrCircuitOpen is returned without calling the provider while the circuit is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures circuit breaker behavior
type CircuitBreakerConfig struct {
	Name string

	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures uint32

	// OpenTimeout is how long the circuit stays open before one probe is let through
	OpenTimeout time.Duration

	// IsFailure decides which errors count against the provider. Defaults to
	// every non-nil error except context cancellation by the caller.
	IsFailure func(err error) bool

	// OnStateChange is called with the lock released
	OnStateChange func(name string, from, to CircuitState)
}

// DefaultCircuitBreakerConfig opens after 5 consecutive failures and probes
// again after 30 seconds
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// CircuitBreaker stops calling a provider that keeps failing. It never
// retries; a rejected call fails fast with ErrCircuitOpen.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         CircuitState
	failures      uint32
	probeInFlight bool
	openedAt      time.Time
	config        CircuitBreakerConfig
	now           func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures == 0 {
		config.MaxFailures = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		}
	}
	return &CircuitBreaker{state: StateClosed, config: config, now: time.Now}
}

// Execute runs fn if the circuit allows it and records the outcome
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	var from CircuitState
	changed := false
	defer func() {
		cb.mu.Unlock()
		if changed {
			cb.notify(from, StateHalfOpen)
		}
	}()

	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.config.OpenTimeout {
			return ErrCircuitOpen
		}
		from, changed = cb.state, true
		cb.state = StateHalfOpen
		cb.probeInFlight = true
		return nil
	default:
		if cb.probeInFlight {
			return ErrCircuitOpen
		}
		cb.probeInFlight = true
		return nil
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	from := cb.state
	failed := cb.config.IsFailure(err)

	switch {
	case cb.state == StateHalfOpen && failed:
		cb.trip()
	case cb.state == StateHalfOpen:
		cb.state = StateClosed
		cb.failures = 0
	case failed:
		cb.failures++
		if cb.failures >= cb.config.MaxFailures {
			cb.trip()
		}
	default:
		cb.failures = 0
	}
	cb.probeInFlight = false
	to := cb.state
	cb.mu.Unlock()

	if from != to {
		cb.notify(from, to)
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.openedAt = cb.now()
	cb.failures = 0
}

func (cb *CircuitBreaker) notify(from, to CircuitState) {
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the circuit
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
	cb.probeInFlight = false
}
