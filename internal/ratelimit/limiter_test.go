package ratelimit

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLimiter_AdmitsQuotaThenRejects(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now))

	for i := 1; i <= 5; i++ {
		require.True(t, l.Admit("10.0.0.1"), "request %d should be admitted", i)
	}
	require.False(t, l.Admit("10.0.0.1"), "6th request must be rejected")
}

func TestLimiter_SlidingWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now))

	require.True(t, l.Admit("c"))
	clock.Advance(30 * time.Second)
	for i := 0; i < 4; i++ {
		require.True(t, l.Admit("c"))
	}
	require.False(t, l.Admit("c"))

	// the first request leaves the window, the four later ones still count
	clock.Advance(30 * time.Second)
	require.True(t, l.Admit("c"))
	require.False(t, l.Admit("c"))

	clock.Advance(30 * time.Second)
	for i := 0; i < 4; i++ {
		require.True(t, l.Admit("c"))
	}
	require.False(t, l.Admit("c"))
}

func TestLimiter_RejectionDoesNotExtendWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		require.True(t, l.Admit("c"))
	}
	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
		require.False(t, l.Admit("c"))
	}

	clock.Advance(10 * time.Second)
	for i := 0; i < 5; i++ {
		require.True(t, l.Admit("c"))
	}
}

func TestLimiter_RetryAfter(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		l.Admit("c")
	}
	clock.Advance(20 * time.Second)

	dec := l.Decide("c")
	assert.False(t, dec.Allowed)
	assert.Equal(t, 40*time.Second, dec.RetryAfter)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	assert.True(t, l.Admit("a"))
	assert.True(t, l.Admit("b"))
	assert.False(t, l.Admit("a"))
	assert.False(t, l.Admit("b"))
}

func TestLimiter_EvictsOldestInserted(t *testing.T) {
	clock := newFakeClock()
	l := New(1, time.Minute, WithClock(clock.Now), WithMaxClients(10, 3))

	for i := 0; i < 10; i++ {
		require.True(t, l.Admit("client"+strconv.Itoa(i)))
	}
	require.Equal(t, 10, l.Len())

	// re-admission attempts by an existing client keep its insertion slot
	require.False(t, l.Admit("client0"))

	require.True(t, l.Admit("client10"))
	require.Equal(t, 8, l.Len())

	// client0..client2 were dropped, so their windows start over
	assert.True(t, l.Admit("client0"))
	assert.False(t, l.Admit("client3"))
}

func TestLimiter_GlobalCeiling(t *testing.T) {
	clock := newFakeClock()
	l := New(5, time.Minute, WithClock(clock.Now), WithGlobalCeiling(1, 2))

	require.True(t, l.Admit("a"))
	require.True(t, l.Admit("b"))

	dec := l.Decide("c")
	require.False(t, dec.Allowed)
	require.Zero(t, dec.RetryAfter)
	require.Equal(t, 2, l.Len(), "a ceiling rejection must not create a client window")

	clock.Advance(time.Second)
	require.True(t, l.Admit("c"))
}

func TestLimiter_ConcurrentSameClient(t *testing.T) {
	l := New(5, time.Minute)

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared") {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 5, admitted.Load())
}

func TestNew_Defaults(t *testing.T) {
	l := New(0, 0)
	assert.Equal(t, DefaultQuota, l.Quota())
	assert.Equal(t, DefaultWindow, l.Window())
}
