// Package profilecache mirrors the last known profile of a browser session
// so a restored session can render before the database answers.
package profilecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"skillsprint/internal/domain"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("profilecache: no cached profile")

type Cache interface {
	Load(ctx context.Context, sessionID string) (*domain.Profile, error)
	Save(ctx context.Context, sessionID string, profile *domain.Profile) error
	Clear(ctx context.Context, sessionID string) error
}

const keyPrefix = "skillsprint:profile:"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Load(ctx context.Context, sessionID string) (*domain.Profile, error) {
	raw, err := c.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profilecache: decode: %w", err)
	}
	return &p, nil
}

func (c *redisCache) Save(ctx context.Context, sessionID string, profile *domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+sessionID, raw, c.ttl).Err()
}

func (c *redisCache) Clear(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, keyPrefix+sessionID).Err()
}

// memoryCache keeps serialized copies so callers never share a *Profile.
type memoryCache struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryCache() Cache {
	return &memoryCache{slots: make(map[string][]byte)}
}

func (c *memoryCache) Load(_ context.Context, sessionID string) (*domain.Profile, error) {
	c.mu.RLock()
	raw, ok := c.slots[sessionID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	var p domain.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profilecache: decode: %w", err)
	}
	return &p, nil
}

func (c *memoryCache) Save(_ context.Context, sessionID string, profile *domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.slots[sessionID] = raw
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	delete(c.slots, sessionID)
	c.mu.Unlock()
	return nil
}
