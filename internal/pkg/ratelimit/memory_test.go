package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory(clock *fakeClock) *Memory {
	m := NewMemory(DefaultMax, DefaultWindow)
	m.now = clock.now
	return m
}

func allow(t *testing.T, m *Memory, id string) bool {
	t.Helper()
	ok, err := m.Allow(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func TestMemory_AllowsThreeThenDenies(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestMemory(clock)

	for i := 0; i < 3; i++ {
		assert.True(t, allow(t, m, "1.2.3.4"), "request %d should pass", i+1)
	}
	assert.False(t, allow(t, m, "1.2.3.4"), "4th request within the window must be denied")
	assert.False(t, allow(t, m, "1.2.3.4"))
}

func TestMemory_IdentifiersAreIndependent(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestMemory(clock)

	for i := 0; i < 3; i++ {
		assert.True(t, allow(t, m, "1.2.3.4"))
	}
	assert.False(t, allow(t, m, "1.2.3.4"))
	assert.True(t, allow(t, m, "a@b.com"), "a different identifier has its own counter")
}

func TestMemory_WindowResetsAfterQuietPeriod(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestMemory(clock)

	for i := 0; i < 3; i++ {
		assert.True(t, allow(t, m, "1.2.3.4"))
	}
	assert.False(t, allow(t, m, "1.2.3.4"))

	clock.advance(DefaultWindow + time.Second)
	assert.True(t, allow(t, m, "1.2.3.4"), "window restarts after 60s of inactivity")
}

func TestMemory_DeniedRequestsDoNotExtendWindow(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestMemory(clock)

	for i := 0; i < 3; i++ {
		assert.True(t, allow(t, m, "1.2.3.4"))
	}

	// Hammering while denied must not push the window forward: the window is
	// measured from the last accepted request.
	clock.advance(30 * time.Second)
	assert.False(t, allow(t, m, "1.2.3.4"))
	clock.advance(31 * time.Second)
	assert.True(t, allow(t, m, "1.2.3.4"))
}

func TestMemory_SlidingWindowMovesWithAcceptedRequests(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newTestMemory(clock)

	assert.True(t, allow(t, m, "a@b.com"))
	clock.advance(50 * time.Second)
	assert.True(t, allow(t, m, "a@b.com"))
	clock.advance(50 * time.Second)
	assert.True(t, allow(t, m, "a@b.com"))

	// Three accepted within sliding reach; the counter never reset because no
	// gap exceeded the window, so the 4th is denied.
	clock.advance(10 * time.Second)
	assert.False(t, allow(t, m, "a@b.com"))
}
