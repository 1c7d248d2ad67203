package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Redis is a shared-store limiter: INCR with a TTL set on the first request
// of each window. Unlike Memory it is correct across instances; the window is
// fixed from the first request rather than sliding with the last one.
type Redis struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRedis creates a Redis-backed limiter allowing max requests per window.
func NewRedis(client *redis.Client, max int, window time.Duration) *Redis {
	return &Redis{client: client, max: max, window: window}
}

func (r *Redis) Allow(ctx context.Context, identifier string) (bool, error) {
	key := keyPrefix + identifier
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit incr: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, fmt.Errorf("ratelimit expire: %w", err)
		}
	}
	return n <= int64(r.max), nil
}
