// Package circuitbreaker stops calling a failing dependency for a cool-down
// period. It never retries; callers see ErrCircuitOpen immediately instead.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrTrialPending = errors.New("circuit breaker trial call already in flight")
)

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type Config struct {
	// FailureThreshold consecutive failures open the circuit. Defaults to 5.
	FailureThreshold uint32
	// Cooldown is how long the circuit stays open before one trial call is let through.
	Cooldown      time.Duration
	OnStateChange func(name string, from, to State)
	Logger        *zap.Logger
}

type CircuitBreaker struct {
	name          string
	threshold     uint32
	cooldown      time.Duration
	onStateChange func(name string, from, to State)
	logger        *zap.Logger
	now           func() time.Time

	mu            sync.Mutex
	state         State
	failures      uint32
	openedAt      time.Time
	trialInFlight bool
}

func New(name string, cfg Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:          name,
		threshold:     cfg.FailureThreshold,
		cooldown:      cfg.Cooldown,
		onStateChange: cfg.OnStateChange,
		logger:        cfg.Logger,
		now:           time.Now,
	}
	if cb.threshold == 0 {
		cb.threshold = 5
	}
	if cb.cooldown <= 0 {
		cb.cooldown = 30 * time.Second
	}
	if cb.logger == nil {
		cb.logger = zap.NewNop()
	}
	return cb
}

// Execute runs fn unless the circuit is open. Errors for which ignore returns
// true are passed through without counting as failures (e.g. caller cancellation).
func (cb *CircuitBreaker) Execute(fn func() error, ignore ...func(error) bool) error {
	if err := cb.acquire(); err != nil {
		return err
	}

	err := fn()

	success := err == nil
	for _, skip := range ignore {
		if err != nil && skip(err) {
			success = true
			break
		}
	}
	cb.release(success)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	switch cb.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.trialInFlight {
			return ErrTrialPending
		}
		cb.trialInFlight = true
	}
	return nil
}

func (cb *CircuitBreaker) release(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trialInFlight = false
		if success {
			cb.failures = 0
			cb.transition(StateClosed)
		} else {
			cb.openedAt = cb.now()
			cb.transition(StateOpen)
		}
		return
	}

	if success {
		cb.failures = 0
		return
	}

	cb.failures++
	if cb.state == StateClosed && cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		cb.transition(StateOpen)
	}
}

// refresh moves an expired open circuit to half-open. Caller holds mu.
func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cooldown {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to

	cb.logger.Info("Circuit breaker state changed",
		zap.String("name", cb.name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Uint32("consecutive_failures", cb.failures),
	)

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
