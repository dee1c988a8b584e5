package ratelimit

import (
	"context"
	"time"
)

// CounterStore is the persistence interface for the fixed-window fallback
// limiter. The GORM rate limit repository satisfies it.
type CounterStore interface {
	Increment(ctx context.Context, identifier string, windowStart time.Time) (int, error)
	Prune(ctx context.Context, cutoff time.Time) error
}

// DatabaseLimiter approximates the sliding window with fixed windows in
// Postgres. Used only while Redis is unreachable, so slight bursts at
// window edges are acceptable.
type DatabaseLimiter struct {
	store CounterStore
}

// NewDatabaseLimiter creates a database-backed fixed window limiter
func NewDatabaseLimiter(store CounterStore) *DatabaseLimiter {
	return &DatabaseLimiter{store: store}
}

// Allow reports whether the request may proceed and records it
func (l *DatabaseLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	windowStart := time.Now().Truncate(window)

	count, err := l.store.Increment(ctx, key, windowStart)
	if err != nil {
		return false, err
	}

	// Opportunistic cleanup of stale windows; errors are not fatal
	_ = l.store.Prune(ctx, windowStart.Add(-2*window))

	return count <= limit, nil
}
