package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/usuarios-app/usuarios/logger"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
)

// RateLimitConfig configures fixed-window rate limiting per client key.
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
}

// DefaultRateLimitConfig limits by client IP.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// RateLimitMiddleware counts requests per key and path in an in-memory
// cache whose entries expire after one minute, giving fixed one-minute
// windows. Applied to the registration, login and verification routes.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	counters := cache.New(time.Minute, 5*time.Minute)

	return func(c *gin.Context) {
		key := "ratelimit:" + config.KeyFunc(c) + ":" + c.Request.URL.Path

		// Add is a no-op when the key already exists, so two concurrent
		// first requests cannot both reset the counter.
		_ = counters.Add(key, int64(0), cache.DefaultExpiration)
		count, err := counters.IncrementInt64(key, 1)
		if err != nil {
			count = 1
		}

		if count > int64(config.RequestsPerMinute) {
			logger.Warningf("rate limit exceeded for %s (count: %d)", key, count)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Demasiadas solicitudes. Intente de nuevo más tarde.",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(config.RequestsPerMinute)-count, 10))

		c.Next()
	}
}
