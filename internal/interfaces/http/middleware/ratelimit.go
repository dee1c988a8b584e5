package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fub-assistant/backend/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for the global request limiter
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	Limit   int
	Window  time.Duration
	Logger  *zap.Logger
	// KeyFunc derives the limiter key from the request, client IP by default
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a middleware enforcing a per-client request ceiling.
// Limiter failures fail open so a broken Redis does not take the widget
// offline.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string {
			return "ip:" + c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, err := cfg.Limiter.Allow(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn("Rate limiter unavailable, allowing request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ERR_RATE_LIMITED",
					"message": "Too many requests. Please try again later.",
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Next()
	}
}
