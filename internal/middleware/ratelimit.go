package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter counts hits per key over a sliding window. Implemented by the
// Redis rate-limit store; tests use an in-memory version.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit returns middleware enforcing at most limit requests per source
// address within the window. Admission runs before any handler work, so a
// limited caller never reaches validation or the payment processor. The name
// scopes the counter, letting a route carry its own tighter limit on top of
// the general one.
func RateLimit(limiter Limiter, name string, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()

		ok, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Counting is best-effort: an unavailable limiter store must not
			// take the whole API down with it.
			log.Warn("rate limiter unavailable", zap.String("key", name), zap.Error(err))
			c.Next()
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
			return
		}

		c.Next()
	}
}
