package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/silkiy/storefront/cache"
)

// RateLimiter counts requests per caller and named policy in a fixed redis
// window. Callers are identified by user id when authenticated, client IP
// otherwise.
type RateLimiter struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewRateLimiter(rdb *redis.Client, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{rdb: rdb, logger: logger}
}

func (rl *RateLimiter) Limit(policy string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := c.GetString("userId")
		if caller == "" {
			caller = c.ClientIP()
		}
		key := fmt.Sprintf(cache.KeyRateLimit, policy, caller)

		ctx := c.Request.Context()
		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down should not take checkout down with it.
			rl.logger.Warn("rate limiter unavailable", "policy", policy, "error", err)
			c.Next()
			return
		}
		if count == 1 {
			_ = rl.rdb.Expire(ctx, key, window).Err()
		}
		if count > int64(max) {
			ttl, _ := rl.rdb.TTL(ctx, key).Result()
			c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds(ttl, window)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":   false,
				"message":   "Too many requests, try again later",
				"errorCode": "RATE_LIMITED",
				"requestId": c.GetString(RequestIDKey),
			})
			return
		}
		c.Next()
	}
}

// RetryAfterSeconds rounds the remaining window up to whole seconds, falling
// back to the full window when redis reports no TTL.
func RetryAfterSeconds(ttl, window time.Duration) int {
	if ttl <= 0 {
		ttl = window
	}
	secs := int(math.Ceil(ttl.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
