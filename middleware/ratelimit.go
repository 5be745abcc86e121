package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-care/config"
	"github.com/ariebrainware/clinic-care/util"
	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute

	rateLimitMessage = "Too many attempts. Please try again later."
)

// localCounters counts attempts when Redis is not available.
var localCounters = cache.New(defaultRateWindow, time.Minute)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimiter limits requests per client IP and path. Rejected requests are
// redirected back to the same path with a flash message.
func RateLimiter(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limit == 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window == 0 {
		cfg.Window = defaultRateWindow
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		endpoint := c.Request.URL.Path
		key := rateLimitKey(clientIP, endpoint)

		allowed, err := checkRateLimit(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// Redis failures must not lock users out.
			util.LogSecurityEvent(util.SecurityEvent{
				EventType: util.EventSuspiciousActivity,
				IP:        clientIP,
				Message:   fmt.Sprintf("Rate limit check failed: %v", err),
			})
			c.Next()
			return
		}

		if !allowed {
			util.LogRateLimitExceeded(clientIP, endpoint)
			util.RedirectWithFlash(c, endpoint, rateLimitMessage)
			return
		}

		c.Next()
	}
}

func rateLimitKey(clientIP, endpoint string) string {
	return fmt.Sprintf("ratelimit:%s:%s", endpoint, clientIP)
}

// checkRateLimit returns true while the counter for key is within limit.
func checkRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return checkLocalRateLimit(key, limit, window)
	}

	pipe := rdb.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}
	return incrCmd.Val() <= int64(limit), nil
}

func checkLocalRateLimit(key string, limit int, window time.Duration) (bool, error) {
	// Add only succeeds for a fresh window; the expiry is fixed from then on.
	_ = localCounters.Add(key, 0, window)
	count, err := localCounters.IncrementInt(key, 1)
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}

// ResetRateLimit clears the counter for a client and endpoint.
func ResetRateLimit(clientIP, endpoint string) error {
	key := rateLimitKey(clientIP, endpoint)
	localCounters.Delete(key)

	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	return rdb.Del(context.Background(), key).Err()
}
