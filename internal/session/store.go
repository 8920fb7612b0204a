// Package session holds the per-browser view of who is signed in and which
// profile belongs to them.
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
)

var ErrClosed = errors.New("session: store closed")

// IdentityClient is the part of identity.Client a store consumes.
type IdentityClient interface {
	OnChange(fn func(identity.Event)) func()
	Current() *domain.Identity
	SignOut(ctx context.Context) error
}

type ProfileFetcher interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

// Snapshot is a consistent copy of a store's state.
type Snapshot struct {
	Identity *domain.Identity
	Profile  *domain.Profile
	Loading  bool
}

type work struct {
	event  *identity.Event
	reload chan error
}

const fetchTimeout = 10 * time.Second

// Store processes identity events and reloads one at a time on its own
// goroutine. Loading is true until the first event has been handled and
// never becomes true again.
type Store struct {
	id       string
	client   IdentityClient
	profiles ProfileFetcher
	cache    profilecache.Cache
	metrics  metrics.Recorder

	mu       sync.RWMutex
	identity *domain.Identity
	profile  *domain.Profile
	loading  bool

	queue       chan work
	ready       chan struct{}
	readyOnce   sync.Once
	done        chan struct{}
	loopDone    chan struct{}
	closeOnce   sync.Once
	startOnce   sync.Once
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewStore(id string, client IdentityClient, profiles ProfileFetcher, cache profilecache.Cache, rec metrics.Recorder) *Store {
	if rec == nil {
		rec = metrics.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		id:       id,
		client:   client,
		profiles: profiles,
		cache:    cache,
		metrics:  rec,
		loading:  true,
		queue:    make(chan work, 16),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Store) ID() string { return s.id }

// Start seeds the profile from the cache and subscribes to identity events.
// Cache misses and decode failures are ignored.
func (s *Store) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if p, err := s.cache.Load(ctx, s.id); err == nil {
			s.mu.Lock()
			s.profile = p
			s.mu.Unlock()
		} else if !errors.Is(err, profilecache.ErrMiss) {
			logger.Log.Debug("Ignoring unreadable cached profile", "session_id", s.id, "error", err)
		}

		s.unsubscribe = s.client.OnChange(func(ev identity.Event) {
			select {
			case s.queue <- work{event: &ev}:
			case <-s.done:
			}
		})
		go s.loop()
	})
}

// Ready is closed once the first identity event has been processed.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Loading: s.loading}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	return snap
}

// Reload re-fetches the profile through the event loop so it is ordered
// with identity events.
func (s *Store) Reload(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case s.queue <- work{reload: reply}:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SignOut ends the identity session and drops the cached profile.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.client.SignOut(ctx)

	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	s.mu.Unlock()

	if cerr := s.cache.Clear(ctx, s.id); cerr != nil {
		logger.Log.Warn("Failed to clear profile cache", "session_id", s.id, "error", cerr)
	}
	return err
}

// Close unsubscribes from identity events and stops the loop. It is safe to
// call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		s.cancel()
		close(s.done)
		s.startOnce.Do(func() { close(s.loopDone) })
		<-s.loopDone
	})
}

func (s *Store) loop() {
	defer close(s.loopDone)
	for {
		select {
		case w := <-s.queue:
			if w.event != nil {
				s.handleEvent(*w.event)
			} else if w.reload != nil {
				w.reload <- s.reload()
			}
		case <-s.done:
			return
		}
	}
}

func (s *Store) handleEvent(ev identity.Event) {
	s.metrics.RecordSessionEvent(string(ev.Type))
	defer s.markLoaded()

	if ev.Identity == nil {
		s.mu.Lock()
		s.identity = nil
		s.profile = nil
		s.mu.Unlock()

		if err := s.cache.Clear(s.ctx, s.id); err != nil {
			logger.Log.Warn("Failed to clear profile cache", "session_id", s.id, "error", err)
		}
		return
	}

	id := *ev.Identity
	s.mu.Lock()
	s.identity = &id
	// A profile that belongs to somebody else is never kept.
	if s.profile != nil && s.profile.ID != id.UID {
		s.profile = nil
	}
	s.mu.Unlock()

	if err := s.fetchProfile(id.UID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.metrics.RecordProfileFetchFailure()
		logger.Log.Error("Failed to fetch profile", "session_id", s.id, "user_id", id.UID, "error", err)
	}
}

func (s *Store) reload() error {
	s.mu.RLock()
	cur := s.identity
	s.mu.RUnlock()
	if cur == nil {
		return nil
	}
	return s.fetchProfile(cur.UID)
}

func (s *Store) fetchProfile(uid string) error {
	ctx, cancel := context.WithTimeout(s.ctx, fetchTimeout)
	defer cancel()

	p, err := s.profiles.GetByID(ctx, uid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	// The identity may have changed while the fetch was in flight.
	stale := s.identity == nil || s.identity.UID != uid
	if !stale {
		s.profile = p
	}
	s.mu.Unlock()

	if !stale {
		if err := s.cache.Save(ctx, s.id, p); err != nil {
			logger.Log.Warn("Failed to write profile cache", "session_id", s.id, "error", err)
		}
	}
	return nil
}

func (s *Store) markLoaded() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}
