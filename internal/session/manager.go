package session

import (
	"context"
	"errors"
	"skillsprint/internal/domain"
	"skillsprint/internal/identity"
	"skillsprint/internal/metrics"
	"skillsprint/internal/profilecache"
	"skillsprint/pkg/logger"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	restoreTimeout     = 15 * time.Second
	defaultMaxSessions = 10000
)

// Session pairs the identity client of one browser with its store.
type Session struct {
	ID     string
	Client *identity.Client
	Store  *Store

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

var _ domain.AuthSession = (*Session)(nil)

func (s *Session) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	return s.Client.SignInWithPassword(ctx, email, password)
}

func (s *Session) SignUp(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	return s.Client.SignUp(ctx, email, password, name)
}

func (s *Session) SignInWithGoogle(ctx context.Context, idToken string) (*domain.Identity, error) {
	return s.Client.SignInWithGoogle(ctx, idToken)
}

func (s *Session) SignOut(ctx context.Context) error {
	return s.Store.SignOut(ctx)
}

func (s *Session) Reload(ctx context.Context) error {
	return s.Store.Reload(ctx)
}

type ManagerConfig struct {
	Provider identity.Provider
	Tokens   identity.TokenStore
	Verifier identity.TokenVerifier
	Profiles ProfileFetcher
	Cache    profilecache.Cache
	Metrics  metrics.Recorder
	IdleTTL  time.Duration
	TokenTTL time.Duration
	// MaxSessions caps live sessions. The least recently seen one is
	// evicted to make room.
	MaxSessions int
}

// Manager owns every live Session. Evicted sessions keep their refresh
// token and are restored on the next request. Sessions only exist for ids
// the manager issued.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Nop{}
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
}

func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether sid has the shape of an issued id.
func ValidSessionID(sid string) bool {
	id, err := uuid.Parse(sid)
	return err == nil && id.String() == sid
}

// Lookup returns the session for sid when it is live or can be restored
// from a stored refresh token. Unknown ids yield nothing.
func (m *Manager) Lookup(ctx context.Context, sid string) (*Session, bool) {
	if !ValidSessionID(sid) {
		return nil, false
	}
	if s, ok := m.Get(sid); ok {
		s.touch(time.Now())
		return s, true
	}

	if _, err := m.cfg.Tokens.Get(ctx, sid); err != nil {
		if !errors.Is(err, identity.ErrNoToken) {
			logger.Log.Warn("Failed to read refresh token", "session_id", sid, "error", err)
		}
		return nil, false
	}
	return m.Open(ctx, sid), true
}

// Begin creates a session under a new id for a sign-in attempt. Nothing is
// restored; the store becomes ready with the first sign-in event. Callers
// drop it with Discard when the attempt fails.
func (m *Manager) Begin(ctx context.Context) *Session {
	s, _ := m.create(ctx, NewSessionID())
	return s
}

// Open returns the live session for sid, creating it when needed. A new
// session starts loading and restores itself in the background.
func (m *Manager) Open(ctx context.Context, sid string) *Session {
	s, created := m.create(ctx, sid)
	if !created {
		return s
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		rctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
		defer cancel()
		if err := s.Client.Restore(rctx); err != nil {
			logger.Log.Warn("Session restore failed", "session_id", sid, "error", err)
		}
	}()
	return s
}

func (m *Manager) create(ctx context.Context, sid string) (*Session, bool) {
	now := time.Now()

	m.mu.Lock()
	if s, ok := m.sessions[sid]; ok {
		m.mu.Unlock()
		s.touch(now)
		return s, false
	}

	var evicted *Session
	if len(m.sessions) >= m.cfg.MaxSessions {
		evicted = m.oldestLocked(now)
		delete(m.sessions, evicted.ID)
	}

	client := identity.NewClient(sid, m.cfg.Provider, m.cfg.Tokens, m.cfg.Verifier, m.cfg.TokenTTL)
	store := NewStore(sid, client, m.cfg.Profiles, m.cfg.Cache, m.cfg.Metrics)
	s := &Session{ID: sid, Client: client, Store: store, lastSeen: now}
	m.sessions[sid] = s
	count := len(m.sessions)
	m.mu.Unlock()

	if evicted != nil {
		evicted.Store.Close()
		logger.Log.Debug("Evicted least recently seen session", "session_id", evicted.ID)
	}
	m.cfg.Metrics.SetActiveSessions(count)
	store.Start(ctx)
	return s, true
}

func (m *Manager) oldestLocked(now time.Time) *Session {
	var oldest *Session
	var idle time.Duration
	for _, s := range m.sessions {
		if d := s.idleSince(now); oldest == nil || d > idle {
			oldest, idle = s, d
		}
	}
	return oldest
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Get(sid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	return s, ok
}

// Close tears down one session.
func (m *Manager) Close(sid string) {
	m.mu.Lock()
	s, ok := m.sessions[sid]
	delete(m.sessions, sid)
	count := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.Store.Close()
		m.cfg.Metrics.SetActiveSessions(count)
	}
}

// Discard closes the session and forgets its refresh token and cached
// profile, so sid can never be restored.
func (m *Manager) Discard(ctx context.Context, sid string) {
	m.Close(sid)
	if err := m.cfg.Tokens.Delete(ctx, sid); err != nil {
		logger.Log.Warn("Failed to delete refresh token", "session_id", sid, "error", err)
	}
	if err := m.cfg.Cache.Clear(ctx, sid); err != nil {
		logger.Log.Warn("Failed to clear profile cache", "session_id", sid, "error", err)
	}
}

// Run evicts idle sessions until ctx is done or Shutdown is called.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.evictIdle(now)
		}
	}
}

func (m *Manager) evictIdle(now time.Time) int {
	var idle []*Session
	m.mu.Lock()
	for sid, s := range m.sessions {
		if s.idleSince(now) >= m.cfg.IdleTTL {
			idle = append(idle, s)
			delete(m.sessions, sid)
		}
	}
	count := len(m.sessions)
	m.mu.Unlock()

	for _, s := range idle {
		s.Store.Close()
	}
	if len(idle) > 0 {
		m.cfg.Metrics.SetActiveSessions(count)
		logger.Log.Debug("Evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Shutdown stops eviction and closes every session.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.stop) })

	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Store.Close()
	}
	m.wg.Wait()
	m.cfg.Metrics.SetActiveSessions(0)
}
