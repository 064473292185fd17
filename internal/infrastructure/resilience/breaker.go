package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
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

// Settings configures the breaker. Zero values fall back to defaults.
type Settings struct {
	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold int
	// Cooldown is how long the circuit stays open before a probe is allowed.
	Cooldown time.Duration
	// OnStateChange is invoked outside the lock after every transition.
	OnStateChange func(name string, from, to State)
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Snapshot is a point-in-time view of the breaker.
type Snapshot struct {
	State               State
	ConsecutiveFailures int
	Successes           uint64
	Failures            uint64
	Rejected            uint64
}

// Breaker trips after a run of consecutive failures and lets a single
// probe through once the cooldown elapses.
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	streak   int
	openedAt time.Time
	probing  bool
	stats    Snapshot
}

// New creates a breaker named for log and metric output.
func New(name string, settings Settings) *Breaker {
	if settings.Threshold <= 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state, promoting open to half-open when the
// cooldown has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.cooled() {
		return StateHalfOpen
	}
	return b.state
}

// Snapshot returns current counters.
func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.State = b.state
	s.ConsecutiveFailures = b.streak
	return s
}

// Do runs fn when the breaker admits the call and records its outcome.
// A panic in fn counts as a failure and is re-raised.
func (b *Breaker) Do(fn func() error) (err error) {
	if err := b.admit(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			b.record(false)
			panic(r)
		}
	}()

	err = fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	var from, to State
	changed := false

	switch b.state {
	case StateOpen:
		if !b.cooled() {
			b.stats.Rejected++
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		from, to, changed = b.state, StateHalfOpen, true
		b.state = StateHalfOpen
		b.probing = true
	case StateHalfOpen:
		if b.probing {
			b.stats.Rejected++
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.probing = true
	}
	b.mu.Unlock()

	if changed {
		b.notify(from, to)
	}
	return nil
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	from := b.state
	if ok {
		b.stats.Successes++
		b.streak = 0
		b.state = StateClosed
	} else {
		b.stats.Failures++
		b.streak++
		if b.state == StateHalfOpen || b.streak >= b.settings.Threshold {
			b.state = StateOpen
			b.openedAt = b.settings.Now()
		}
	}
	b.probing = false
	to := b.state
	b.mu.Unlock()

	if from != to {
		b.notify(from, to)
	}
}

func (b *Breaker) cooled() bool {
	return b.settings.Now().Sub(b.openedAt) >= b.settings.Cooldown
}

func (b *Breaker) notify(from, to State) {
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}
