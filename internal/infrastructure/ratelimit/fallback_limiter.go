package ratelimit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// FallbackLimiter tries the primary limiter first and falls back to the
// secondary when the primary errors. If both fail the request is allowed;
// losing rate limiting briefly is preferable to refusing all traffic.
type FallbackLimiter struct {
	primary   Limiter
	secondary Limiter
	logger    *zap.Logger
}

// NewFallbackLimiter creates a limiter chain with fail-open semantics
func NewFallbackLimiter(primary, secondary Limiter, logger *zap.Logger) *FallbackLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackLimiter{primary: primary, secondary: secondary, logger: logger}
}

// Allow reports whether the request may proceed
func (l *FallbackLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	allowed, err := l.primary.Allow(ctx, key, limit, window)
	if err == nil {
		return allowed, nil
	}

	l.logger.Warn("Primary rate limiter unavailable, using fallback",
		zap.String("key", key),
		zap.Error(err))

	if l.secondary != nil {
		allowed, err = l.secondary.Allow(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		l.logger.Error("Fallback rate limiter failed, allowing request",
			zap.String("key", key),
			zap.Error(err))
	}

	return true, nil
}
