package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

var errBoom = errors.New("boom")

func run(b *Breaker, outcomes ...bool) {
	for _, ok := range outcomes {
		_ = b.Do(func() error {
			if ok {
				return nil
			}
			return errBoom
		})
	}
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []bool
		want     State
	}{
		{"stays closed on successes", []bool{true, true, true}, StateClosed},
		{"below threshold", []bool{false, false}, StateClosed},
		{"success resets streak", []bool{false, false, true, false, false}, StateClosed},
		{"opens at threshold", []bool{false, false, false}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(0, 0)}
			b := New("test", Settings{Threshold: 3, Cooldown: time.Minute, Now: clock.Now})

			run(b, tt.outcomes...)
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreakerRejectsWhileOpen(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{Threshold: 1, Cooldown: time.Minute, Now: clock.Now})

	run(b, false)
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, uint64(1), b.Snapshot().Rejected)
}

func TestBreakerProbeAfterCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	var transitions []string
	b := New("test", Settings{
		Threshold: 1,
		Cooldown:  time.Minute,
		Now:       clock.Now,
		OnStateChange: func(_ string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	run(b, false)
	clock.Advance(time.Minute)
	assert.Equal(t, StateHalfOpen, b.State())

	// failed probe reopens
	run(b, false)
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(time.Minute)
	run(b, true)
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"closed->open",
		"open->half-open",
		"half-open->open",
		"open->half-open",
		"half-open->closed",
	}, transitions)
}

func TestBreakerSingleProbe(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	b := New("test", Settings{Threshold: 1, Cooldown: time.Second, Now: clock.Now})
	run(b, false)
	clock.Advance(time.Second)

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- b.Do(func() error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrCircuitOpen)
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{Threshold: 1})

	assert.Panics(t, func() {
		_ = b.Do(func() error { panic("bad") })
	})
	snap := b.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, uint64(1), snap.Failures)
}

func TestBreakerDefaults(t *testing.T) {
	b := New("defaults", Settings{})
	assert.Equal(t, "defaults", b.Name())
	run(b, false, false, false, false)
	assert.Equal(t, StateClosed, b.State())
	run(b, false)
	assert.Equal(t, StateOpen, b.State())
}
