package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is rejecting calls. Callers
// that guard a cache tier treat it like a miss and fall through.
var ErrCircuitOpen = errors.New("circuit breaker is open")

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

type Counts struct {
	Requests            uint32
	TotalSuccesses      uint32
	TotalFailures       uint32
	ConsecutiveFailures uint32
}

// CircuitBreaker guards a flaky dependency (here: the Redis cache tier).
// It opens after a run of consecutive failures, rejects calls for a
// cooldown period, then lets a limited number of probes through half-open
// before closing again.
type CircuitBreaker struct {
	name             string
	failureThreshold uint32
	cooldown         time.Duration
	halfOpenMax      uint32

	mutex    sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probes   uint32
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:             name,
		failureThreshold: 5,
		cooldown:         30 * time.Second,
		halfOpenMax:      3,
		state:            StateClosed,
	}
}

// Execute runs fn under the breaker. A context error counts as a failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := cb.beforeRequest(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			cb.afterRequest(false)
			panic(r)
		}
	}()

	if err := ctx.Err(); err != nil {
		cb.afterRequest(false)
		return nil, err
	}

	result, err := fn()
	cb.afterRequest(err == nil)
	return result, err
}

// State reports the current state, promoting open to half-open once the
// cooldown has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch cb.currentState(time.Now()) {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.probes >= cb.halfOpenMax {
			return ErrCircuitOpen
		}
		cb.probes++
	}

	cb.counts.Requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	state := cb.currentState(time.Now())

	if success {
		cb.counts.TotalSuccesses++
		cb.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen {
			cb.state = StateClosed
			cb.probes = 0
		}
		return
	}

	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++

	if state == StateHalfOpen || cb.counts.ConsecutiveFailures >= cb.failureThreshold {
		cb.trip(time.Now())
	}
}

func (cb *CircuitBreaker) trip(now time.Time) {
	cb.state = StateOpen
	cb.openedAt = now
	cb.probes = 0
}

func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = StateHalfOpen
		cb.probes = 0
	}
	return cb.state
}
