package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed within
// a window allowing at most limit requests.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
