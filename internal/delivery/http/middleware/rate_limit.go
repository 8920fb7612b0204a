package middleware

import (
	"context"
	"fmt"
	"net/http"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/security"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// KeyFunc defaults to the client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// FailClosed rejects requests while Redis errors.
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// RateLimiter counts requests in Redis when a client is given and in
// per-key token buckets otherwise.
type RateLimiter struct {
	client *goredis.Client
	audit  *security.SecurityLogger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewRateLimiter(client *goredis.Client, audit *security.SecurityLogger) *RateLimiter {
	if audit == nil {
		audit = security.NopSecurityLogger()
	}
	return &RateLimiter{
		client: client,
		audit:  audit,
		local:  make(map[string]*rate.Limiter),
	}
}

// AuthRateLimitConfig is applied to sign-in and sign-up.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:auth:",
		FailClosed: true,
	}
}

// AIRateLimitConfig is applied to routes that call the AI backend.
func AIRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ai:",
	}
}

func (rl *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	if config.Limit <= 0 {
		config.Limit = 10
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		var allowed bool
		var remaining int
		var retryAfter time.Duration
		if rl.client != nil {
			count, ttl, err := rl.checkRedis(c.Request.Context(), fullKey, config.Window)
			if err != nil {
				logger.Log.Warn("Rate limit check failed", "key_prefix", config.KeyPrefix, "error", err)
				if config.FailClosed {
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				allowed, remaining, retryAfter = rl.checkLocal(fullKey, config)
			} else {
				allowed = count <= config.Limit
				remaining = config.Limit - count
				retryAfter = ttl
			}
		} else {
			allowed, remaining, retryAfter = rl.checkLocal(fullKey, config)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			if seconds < 1 {
				seconds = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(seconds))
			rl.audit.LogRateLimitTriggered(c.ClientIP(), c.GetString("RequestID"), c.FullPath())
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		c.Next()
	}
}

func (rl *RateLimiter) checkRedis(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	result, err := rl.client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, 0, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Duration(ttl) * time.Second, nil
}

func (rl *RateLimiter) checkLocal(key string, config RateLimitConfig) (bool, int, time.Duration) {
	rl.mu.Lock()
	lim, ok := rl.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(config.Window/time.Duration(config.Limit)), config.Limit)
		rl.local[key] = lim
	}
	rl.mu.Unlock()

	r := lim.Reserve()
	if delay := r.Delay(); delay > 0 {
		r.Cancel()
		return false, 0, delay
	}
	return true, int(lim.Tokens()), 0
}
