package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/circlehub/backend/pkg/response"
)

// RateLimit returns a Redis-backed fixed-window limiter keyed by client IP.
// On Redis failure the request is let through; limiting is best-effort.
func RateLimit(client *redis.Client, requests, windowSec int, logger *zap.Logger) gin.HandlerFunc {
	window := time.Duration(windowSec) * time.Second
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/int64(windowSec))
		ctx := c.Request.Context()

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			_ = client.Expire(ctx, key, window).Err()
		}
		if count > int64(requests) {
			response.TooManyRequests(c, "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
