package middleware

import (
	"log"
	"net/http"

	"github.com/cardforge/api/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware enforces a per-user fixed-window limit for one action.
// Redis failures are fail-open: a broken limiter must not take the API down.
func RateLimitMiddleware(limiter *ratelimit.Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		result, err := limiter.Check(c.Request.Context(), userID, action)
		if err != nil {
			log.Printf("[RateLimit] check failed for user %d action %s: %v", userID, action, err)
			c.Next()
			return
		}

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "rate limit exceeded",
				"reset_at": result.ResetAt,
				"limit":    result.Limit,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
