package clients

import (
	"sync"
	"time"
)

// State is the position of a Breaker.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota

	// StateOpen rejects calls until the cool-down elapses.
	StateOpen

	// StateHalfOpen admits a few probe calls to decide whether to close again.
	StateHalfOpen
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

// BreakerConfig tunes a Breaker.
type BreakerConfig struct {
	// MaxFailures consecutive failures trip the breaker open.
	MaxFailures int

	// Cooldown is how long an open breaker waits before probing.
	Cooldown time.Duration

	// Probes is both the number of concurrent half-open calls admitted and the
	// number of consecutive successes needed to close.
	Probes int
}

// BreakerSnapshot is a point-in-time view of a Breaker, used by readiness checks.
type BreakerSnapshot struct {
	State       State
	Failures    int
	LastFailure time.Time
}

// Breaker guards a downstream dependency. The content API and the asset
// storage each get one so a failing upload bucket does not block reads.
//
//	closed    --MaxFailures failures-->  open
//	open      --Cooldown elapsed------>  half-open
//	half-open --Probes successes------>  closed
//	half-open --any failure----------->  open
type Breaker struct {
	mu          sync.Mutex
	cfg         BreakerConfig
	state       State
	failures    int
	successes   int
	inFlight    int
	lastFailure time.Time
	onChange    func(from, to State)
	now         func() time.Time
}

// NewBreaker returns a closed breaker. Zero config values fall back to one
// failure, no cool-down and one probe.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures < 1 {
		cfg.MaxFailures = 1
	}
	if cfg.Probes < 1 {
		cfg.Probes = 1
	}

	return &Breaker{cfg: cfg, now: time.Now}
}

// OnStateChange registers fn to run, in its own goroutine, after every transition.
func (b *Breaker) OnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Allow reports whether a call may proceed. A true result in half-open state
// reserves a probe slot that the caller must release with Success or Failure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailure) < b.cfg.Cooldown {
			return false
		}
		b.moveTo(StateHalfOpen)
		b.inFlight = 1

		return true
	case StateHalfOpen:
		if b.inFlight >= b.cfg.Probes {
			return false
		}
		b.inFlight++

		return true
	}

	return false
}

// Success records a call that reached the dependency and got an answer.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.inFlight--
		b.successes++
		if b.successes >= b.cfg.Probes {
			b.moveTo(StateClosed)
		}
	}
}

// Failure records a call that could not reach the dependency.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.MaxFailures {
			b.moveTo(StateOpen)
		}
	case StateHalfOpen:
		b.inFlight--
		b.moveTo(StateOpen)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Snapshot returns the current state with its failure counters.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerSnapshot{State: b.state, Failures: b.failures, LastFailure: b.lastFailure}
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(next State) {
	if b.state == next {
		return
	}

	prev := b.state
	b.state = next
	b.failures = 0
	b.successes = 0
	if next != StateHalfOpen {
		b.inFlight = 0
	}

	if b.onChange != nil {
		go b.onChange(prev, next)
	}
}
