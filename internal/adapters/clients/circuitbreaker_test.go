package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(maxFailures, probes int) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	b := NewBreaker(BreakerConfig{MaxFailures: maxFailures, Cooldown: time.Minute, Probes: probes})
	b.now = clock.Now

	return b, clock
}

func TestBreaker_StartsClosed(t *testing.T) {
	b, _ := newTestBreaker(3, 1)

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, 1)

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()
	assert.Equal(t, StateClosed, b.State(), "success must reset the failure streak")

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	b, clock := newTestBreaker(1, 2)

	b.Failure()
	require.Equal(t, StateOpen, b.State())

	clock.Advance(59 * time.Second)
	assert.False(t, b.Allow())

	clock.Advance(time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	assert.True(t, b.Allow(), "second probe slot")
	assert.False(t, b.Allow(), "probe slots exhausted")
}

func TestBreaker_HalfOpenClosesAfterProbes(t *testing.T) {
	b, clock := newTestBreaker(1, 2)

	b.Failure()
	clock.Advance(time.Minute)
	require.True(t, b.Allow())
	require.True(t, b.Allow())

	b.Success()
	assert.Equal(t, StateHalfOpen, b.State())

	b.Success()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	b, clock := newTestBreaker(1, 2)

	b.Failure()
	clock.Advance(time.Minute)
	require.True(t, b.Allow())

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_OnStateChange(t *testing.T) {
	b, _ := newTestBreaker(1, 1)

	changes := make(chan [2]State, 1)
	b.OnStateChange(func(from, to State) { changes <- [2]State{from, to} })

	b.Failure()

	select {
	case got := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, got)
	case <-time.After(time.Second):
		t.Fatal("state change callback not called")
	}
}

func TestBreaker_Snapshot(t *testing.T) {
	b, clock := newTestBreaker(3, 1)

	b.Failure()
	snap := b.Snapshot()

	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, 1, snap.Failures)
	assert.Equal(t, clock.Now(), snap.LastFailure)
}

func TestBreaker_ZeroConfigDefaults(t *testing.T) {
	b := NewBreaker(BreakerConfig{})

	b.Failure()
	assert.Equal(t, StateOpen, b.State())
	assert.True(t, b.Allow(), "zero cool-down probes immediately")
}

func TestBreaker_ConcurrentUse(t *testing.T) {
	b := NewBreaker(BreakerConfig{MaxFailures: 1000, Cooldown: time.Second, Probes: 1})

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if b.Allow() {
				if i%2 == 0 {
					b.Success()
				} else {
					b.Failure()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
