// Package resilience provides a circuit breaker for calls to flaky upstreams.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is a breaker state.
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls are rejected
	StateHalfOpen              // one trial call is allowed
)

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

// ErrOpen is returned without calling the wrapped function while the breaker is open.
var ErrOpen = errors.New("circuit breaker is open")

// Opts configures a Breaker.
type Opts struct {
	// Threshold is how many consecutive counted failures open the breaker.
	Threshold int
	// Cooldown is how long the breaker stays open before allowing a trial call.
	Cooldown time.Duration
	// Counts reports whether err counts as a failure. Nil counts every error.
	Counts func(err error) bool
	// OnChange is called, outside the lock, after every state transition.
	OnChange func(from, to State)
}

// Breaker trips after consecutive failures and recovers through a single
// half-open trial call.
type Breaker struct {
	mu       sync.Mutex
	opts     Opts
	state    State
	failures int
	openedAt time.Time
	trialing bool
	now      func() time.Time
}

// New returns a closed breaker. Threshold defaults to 5 and Cooldown to 30s.
func New(opts Opts) *Breaker {
	if opts.Threshold <= 0 {
		opts.Threshold = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}
	return &Breaker{opts: opts, now: time.Now}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current moves open to half-open once the cooldown elapses. Must hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.opts.Cooldown {
		b.state = StateHalfOpen
		b.trialing = false
	}
	return b.state
}

// Do runs f through b.
func Do[T any](ctx context.Context, b *Breaker, f func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := b.acquire(); err != nil {
		return zero, err
	}
	v, err := f(ctx)
	b.release(err)
	return v, err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.current() {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.trialing {
			return ErrOpen
		}
		b.trialing = true
	}
	return nil
}

func (b *Breaker) release(err error) {
	b.mu.Lock()
	from := b.state
	counted := err != nil && (b.opts.Counts == nil || b.opts.Counts(err))
	switch {
	case counted:
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.opts.Threshold {
			b.state = StateOpen
			b.openedAt = b.now()
			b.failures = 0
		}
	case err == nil:
		b.state = StateClosed
		b.failures = 0
	default:
		// An uncounted error ends a trial call without deciding it.
		if b.state == StateHalfOpen {
			b.trialing = false
		}
	}
	b.trialing = b.trialing && b.state == StateHalfOpen
	to := b.state
	b.mu.Unlock()

	if from != to && b.opts.OnChange != nil {
		b.opts.OnChange(from, to)
	}
}
