package repositories

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-booking-pricing/internal/logger"
)

// RateLimitRepository keeps fixed-window request counters in Redis
type RateLimitRepository struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRepository creates a counter store whose keys start with prefix.
func NewRateLimitRepository(client *redis.Client, prefix string) *RateLimitRepository {
	if prefix == "" {
		prefix = "rate_limit"
	}
	return &RateLimitRepository{client: client, prefix: prefix}
}

// Increment counts one hit for key in the current window and returns the
// running count together with the time left until the window resets.
// The window starts with the first hit and lasts window.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := r.prefix + ":" + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, fullKey, 0, window)
		incr = pipe.Incr(ctx, fullKey)
		ttl = pipe.PTTL(ctx, fullKey)
		return nil
	})

	var (
		count int64
		left  time.Duration
	)
	if err == nil {
		count = incr.Val()
		left = ttl.Val()
		if left < 0 {
			left = window
		}
	}

	logger.Log.Infow(
		"key", fullKey,
		"result", count,
		"ttl", left,
		"error", err,
	)

	if err != nil {
		return 0, 0, err
	}
	return count, left, nil
}
