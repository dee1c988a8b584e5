package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSlidingWindowLimiter implements a sliding-window counter on a Redis
// sorted set. Each request is a member scored by its arrival time; entries
// older than the window are trimmed before counting.
type RedisSlidingWindowLimiter struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSlidingWindowLimiter creates a Redis-backed sliding window limiter
func NewRedisSlidingWindowLimiter(client *redis.Client) *RedisSlidingWindowLimiter {
	return &RedisSlidingWindowLimiter{
		client:    client,
		keyPrefix: "rate_limit:",
	}
}

// Allow reports whether the request may proceed and records it if so
func (l *RedisSlidingWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	redisKey := l.keyPrefix + key
	windowStart := now.Add(-window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() >= int64(limit) {
		return false, nil
	}

	record := l.client.TxPipeline()
	record.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	record.Expire(ctx, redisKey, window)
	if _, err := record.Exec(ctx); err != nil {
		return false, err
	}

	return true, nil
}
