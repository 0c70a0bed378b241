// Package redis provides Redis-based adapters for the mealhow backend.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle is a fixed-window request counter backed by Redis, used to
// slow credential stuffing against the public auth endpoints. Counters are
// shared across instances; the window is enforced by key TTL.
type LoginThrottle struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewLoginThrottle creates a throttle allowing limit requests per window.
func NewLoginThrottle(client redis.UniversalClient, limit int, window time.Duration) (*LoginThrottle, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}
	return &LoginThrottle{
		client: client,
		prefix: "throttle:",
		limit:  limit,
		window: window,
	}, nil
}

// NewLoginThrottleWithPrefix creates a throttle with a custom key prefix.
func NewLoginThrottleWithPrefix(client redis.UniversalClient, prefix string, limit int, window time.Duration) (*LoginThrottle, error) {
	t, err := NewLoginThrottle(client, limit, window)
	if err != nil {
		return nil, err
	}
	t.prefix = prefix
	return t, nil
}

// Allow counts a request under key and reports whether it is within the
// limit. The first request in a window sets the key's TTL; the counter
// expires with it.
func (t *LoginThrottle) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return true, nil
	}

	redisKey := t.prefix + key
	count, err := t.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, redisKey, t.window).Err(); err != nil {
			return false, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= int64(t.limit), nil
}

// Reset clears the counter for key, e.g. after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return t.client.Del(ctx, t.prefix+key).Err()
}
