package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window limiter over INCR+EXPIRE. It throttles the
// public redeem/check routes per caller; the core performs no rate limiting
// of its own.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		err = r.client.Expire(ctx, key, window)
		if err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// CallerKey scopes the window per route and caller identity (owner id when
// known, remote address otherwise).
func CallerKey(route, caller string) string {
	return fmt.Sprintf("rate_limit:%s:%s", route, caller)
}
