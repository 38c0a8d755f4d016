package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards a flaky dependency. After threshold consecutive
// failures it refuses calls for a cooldown period, then admits a bounded
// number of trial calls before closing again.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold  int
	cooldown   time.Duration
	trialLimit int

	state       CircuitState
	failures    int
	trippedAt   time.Time
	trialActive int
	trialPassed int
	clock       func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = 1
	}

	return &CircuitBreaker{
		threshold:  failureThreshold,
		cooldown:   openTimeout,
		trialLimit: halfOpenMaxReq,
		state:      CircuitStateClosed,
		clock:      time.Now,
	}
}

// Allow reports whether a call may proceed. An expired open circuit moves to
// half-open here, counting the caller as a trial.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.clock().Sub(b.trippedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.transition(CircuitStateHalfOpen)
	}

	if b.state == CircuitStateHalfOpen {
		if b.trialActive >= b.trialLimit {
			return ErrCircuitOpen
		}
		b.trialActive++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.trialActive > 0 {
			b.trialActive--
		}
		b.trialPassed++
		if b.trialPassed >= b.trialLimit && b.trialActive == 0 {
			b.transition(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.transition(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		// Any trial failure trips the circuit again.
		if b.trialActive > 0 {
			b.trialActive--
		}
		b.transition(CircuitStateOpen)
	case CircuitStateOpen:
		b.trippedAt = b.clock()
	}
}

// State reports the effective state. An open circuit past its cooldown reads
// as half-open without being mutated.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.clock().Sub(b.trippedAt) >= b.cooldown {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) transition(next CircuitState) {
	b.state = next
	b.trialActive = 0
	b.trialPassed = 0
	switch next {
	case CircuitStateClosed:
		b.failures = 0
		b.trippedAt = time.Time{}
	case CircuitStateOpen:
		b.trippedAt = b.clock()
	}
}
