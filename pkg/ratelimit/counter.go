package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counter tracks attempt counts per key with a sliding expiry, backed by
// Redis. The first increment on a key arms its TTL.
type Counter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCounter(rdb *redis.Client, ttl time.Duration) *Counter {
	return &Counter{rdb: rdb, ttl: ttl}
}

// IncrementAndGet increments the attempt count for a key and returns the
// new count.
func (c *Counter) IncrementAndGet(ctx context.Context, key string) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, c.ttl).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Reset clears the attempt count for a key.
func (c *Counter) Reset(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
