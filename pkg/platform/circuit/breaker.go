// Package circuit provides a two-state circuit breaker for dependencies that
// have a degraded fallback.
package circuit

import "sync"

// Transition reports a state change caused by a Record call.
type Transition int

const (
	NoChange Transition = iota
	Opened
	Closed
)

// Breaker opens after a run of consecutive failures and closes again after a
// run of consecutive successes. Callers keep trying the primary path while
// open; the breaker only tells them whether to use the fallback as well.
type Breaker struct {
	mu               sync.Mutex
	open             bool
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the circuit. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes that close it. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

func New(opts ...Option) *Breaker {
	b := &Breaker{failureThreshold: 5, successThreshold: 3}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// RecordFailure returns whether the circuit is open after the failure.
func (b *Breaker) RecordFailure() (open bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.failures++
	if !b.open && b.failures >= b.failureThreshold {
		b.open = true
		return true, Opened
	}
	return b.open, NoChange
}

// RecordSuccess returns whether the circuit is open after the success.
func (b *Breaker) RecordSuccess() (open bool, t Transition) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if !b.open {
		return false, NoChange
	}
	b.successes++
	if b.successes >= b.successThreshold {
		b.open = false
		b.successes = 0
		return false, Closed
	}
	return true, NoChange
}
