// Package ratelimit provides the request-counting limiter consulted by the
// auth service before issuing OTP codes. The limiter is injected rather than
// global so the in-process counter can be swapped for the Redis backend in
// multi-instance deployments.
package ratelimit

import (
	"context"
	"time"
)

// Defaults applied to OTP issuance: 3 requests per identifier per 60 seconds.
const (
	DefaultMax    = 3
	DefaultWindow = 60 * time.Second
)

// Limiter decides whether a request from the given identifier (client IP or
// target email, tracked independently) may proceed.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}
