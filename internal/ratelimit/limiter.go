package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit  = 10
	defaultWindow = time.Minute
)

// Limiter is a fixed-window per-key rate limiter backed by Redis. Window
// expiry is delegated to Redis TTLs, so no cleanup is needed.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client: client,
		limit:  defaultLimit,
		window: defaultWindow,
	}
}

// Allow records one request for the key/purpose pair and reports whether it
// is within the window budget.
func (l *Limiter) Allow(ctx context.Context, key, purpose string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%s", purpose, key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record rate limit request: %w", err)
	}

	return incr.Val() <= int64(l.limit), nil
}
