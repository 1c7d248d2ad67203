package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, DefaultMax, DefaultWindow), mr
}

func TestRedis_AllowsThreeThenDenies(t *testing.T) {
	r, _ := newTestRedis(t)

	for i := 0; i < 3; i++ {
		ok, err := r.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should pass", i+1)
	}
	ok, err := r.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok, "4th request within the window must be denied")
}

func TestRedis_IdentifiersAreIndependent(t *testing.T) {
	r, _ := newTestRedis(t)

	for i := 0; i < 4; i++ {
		_, err := r.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
	}
	ok, err := r.Allow(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "a fresh identifier has its own budget")
}

func TestRedis_WindowExpiresViaTTL(t *testing.T) {
	r, mr := newTestRedis(t)

	for i := 0; i < 4; i++ {
		_, err := r.Allow(context.Background(), "1.2.3.4")
		require.NoError(t, err)
	}
	ok, err := r.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(DefaultWindow + time.Second)

	ok, err = r.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "the counter must expire with the window")
}

func TestRedis_CounterKeyCarriesTTL(t *testing.T) {
	r, mr := newTestRedis(t)

	_, err := r.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)

	ttl := mr.TTL(keyPrefix + "1.2.3.4")
	assert.Greater(t, ttl, time.Duration(0), "first request must set the expiry")
	assert.LessOrEqual(t, ttl, DefaultWindow)
}
