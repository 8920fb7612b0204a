package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// UploadLimiter caps uploads per IP per minute and per user per day. With
// Redis it uses a sliding window; without, token buckets in memory.
type UploadLimiter struct {
	maxPerMinute int
	maxPerDay    int
	client       *goredis.Client

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

// NewUploadLimiter creates an upload rate limiter
// Default: 10 uploads/min per IP, 50 uploads/day per user
func NewUploadLimiter(perMin, perDay int, client *goredis.Client) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		client:       client,
		local:        make(map[string]*rate.Limiter),
	}
}

// AllowUpload returns whether the upload may proceed and, if not, how many
// seconds to wait. Redis errors deny the upload.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	if ul.client == nil {
		return ul.allowLocal(ip, userID)
	}

	now := time.Now().Unix()

	allowed, err := ul.checkLimit(ctx, "ratelimit:upload:ip:"+ip, ul.maxPerMinute, 60, now)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if userID != "" {
		allowed, err = ul.checkLimit(ctx, "ratelimit:upload:user:"+userID, ul.maxPerDay, 86400, now)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, window int, now int64) (bool, error) {
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, window, now).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}

func (ul *UploadLimiter) allowLocal(ip, userID string) (bool, int, error) {
	ipLim := ul.limiter("ip:"+ip, rate.Every(time.Minute/time.Duration(ul.maxPerMinute)), ul.maxPerMinute)
	if !ipLim.Allow() {
		return false, 60, nil
	}
	if userID != "" {
		userLim := ul.limiter("user:"+userID, rate.Every(24*time.Hour/time.Duration(ul.maxPerDay)), ul.maxPerDay)
		if !userLim.Allow() {
			return false, 3600, nil
		}
	}
	return true, 0, nil
}

func (ul *UploadLimiter) limiter(key string, every rate.Limit, burst int) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()
	l, ok := ul.local[key]
	if !ok {
		l = rate.NewLimiter(every, burst)
		ul.local[key] = l
	}
	return l
}
