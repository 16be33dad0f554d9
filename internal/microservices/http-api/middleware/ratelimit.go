package middleware

import (
	"net/http"

	"reviewhub/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client IP.
func RateLimit(limiter *ratelimit.KeyedRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, try again later"})
			return
		}
		c.Next()
	}
}
