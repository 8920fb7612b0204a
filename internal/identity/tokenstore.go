package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoToken = errors.New("identity: no stored refresh token")

// TokenStore persists refresh tokens per browser session so a session can
// be restored after the in-process state is gone.
type TokenStore interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Set(ctx context.Context, sessionID, refreshToken string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

const tokenKeyPrefix = "skillsprint:refresh:"

type redisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &redisTokenStore{client: client}
}

func (s *redisTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	tok, err := s.client.Get(ctx, tokenKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoToken
	}
	return tok, err
}

func (s *redisTokenStore) Set(ctx context.Context, sessionID, refreshToken string, ttl time.Duration) error {
	return s.client.Set(ctx, tokenKeyPrefix+sessionID, refreshToken, ttl).Err()
}

func (s *redisTokenStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, tokenKeyPrefix+sessionID).Err()
}

type memoryToken struct {
	value     string
	expiresAt time.Time
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
}

// NewMemoryTokenStore is used when Redis is not configured. Tokens do not
// survive a restart.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{tokens: make(map[string]memoryToken)}
}

func (s *memoryTokenStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[sessionID]
	if !ok {
		return "", ErrNoToken
	}
	if !tok.expiresAt.IsZero() && time.Now().After(tok.expiresAt) {
		delete(s.tokens, sessionID)
		return "", ErrNoToken
	}
	return tok.value, nil
}

func (s *memoryTokenStore) Set(_ context.Context, sessionID, refreshToken string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := memoryToken{value: refreshToken}
	if ttl > 0 {
		tok.expiresAt = time.Now().Add(ttl)
	}
	s.tokens[sessionID] = tok
	return nil
}

func (s *memoryTokenStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}
