package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/phillipbowles/FixItNow/services/api-gateway/internal/ratelimit"
)

// RateLimit rejects clients that exceed the per-IP request allowance
// before their request reaches any backend service.
func RateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Allow(c.Request.Context(), ratelimit.Key(c.ClientIP()))
		if !d.Allowed {
			retry := int(d.RetryAfter.Seconds() + 0.5)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"detail":      "Too many requests. Please try again later.",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
