package security

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block (default: 5)
	AttemptWindow time.Duration // window for counting attempts (default: 15min)
	BlockDuration time.Duration // block length (default: 15min)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed password sign-ins per email and blocks the
// email for a while once the limit is reached. Without Redis the counters
// live in process memory.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	audit  *SecurityLogger

	mu      sync.Mutex
	failed  map[string]*attemptCounter
	blocked map[string]time.Time
	now     func() time.Time
}

type attemptCounter struct {
	count   int
	resetAt time.Time
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, audit *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config = DefaultLoginTrackerConfig()
	}
	if audit == nil {
		audit = NopSecurityLogger()
	}
	return &LoginTracker{
		config:  config,
		client:  client,
		audit:   audit,
		failed:  make(map[string]*attemptCounter),
		blocked: make(map[string]time.Time),
		now:     time.Now,
	}
}

const (
	failLoginUserPrefix    = "fail:login:user:"
	blockedLoginUserPrefix = "blocked:login:user:"
)

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: current count after increment
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

// IsBlocked reports whether sign-in for email is currently refused.
func (lt *LoginTracker) IsBlocked(ctx context.Context, email string) (bool, error) {
	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		until, ok := lt.blocked[email]
		if ok && lt.now().After(until) {
			delete(lt.blocked, email)
			return false, nil
		}
		return ok, nil
	}

	exists, err := lt.client.Exists(ctx, blockedLoginUserPrefix+email).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check user block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt counts a failed sign-in and returns whether the email
// is now blocked.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, requestID string) (bool, int, error) {
	lt.audit.LogLoginFailed(email, ip, requestID, "invalid_credentials")

	count, err := lt.increment(ctx, email)
	if err != nil {
		return false, 0, err
	}
	if count < lt.config.MaxAttempts {
		return false, count, nil
	}

	if err := lt.block(ctx, email); err != nil {
		return true, count, fmt.Errorf("failed to create block: %w", err)
	}
	lt.audit.LogBlockCreated("email", email, ip, int(lt.config.BlockDuration.Minutes()))
	return true, count, nil
}

// ClearAttempts resets the counter after a successful sign-in.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email string) error {
	if lt.client == nil {
		lt.mu.Lock()
		delete(lt.failed, email)
		lt.mu.Unlock()
		return nil
	}
	if err := lt.client.Del(ctx, failLoginUserPrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to clear user attempts: %w", err)
	}
	return nil
}

func (lt *LoginTracker) increment(ctx context.Context, email string) (int, error) {
	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		now := lt.now()
		c, ok := lt.failed[email]
		if !ok || now.After(c.resetAt) {
			c = &attemptCounter{resetAt: now.Add(lt.config.AttemptWindow)}
			lt.failed[email] = c
		}
		c.count++
		return c.count, nil
	}

	ttl := int(lt.config.AttemptWindow.Seconds())
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{failLoginUserPrefix + email}, ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) block(ctx context.Context, email string) error {
	if lt.client == nil {
		lt.mu.Lock()
		lt.blocked[email] = lt.now().Add(lt.config.BlockDuration)
		delete(lt.failed, email)
		lt.mu.Unlock()
		return nil
	}
	return lt.client.Set(ctx, blockedLoginUserPrefix+email, "1", lt.config.BlockDuration).Err()
}
