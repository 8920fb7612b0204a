package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skillsprint/internal/domain"
	"skillsprint/internal/identity"
	"skillsprint/internal/profilecache"
	"skillsprint/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	mu        sync.Mutex
	listeners map[int]func(identity.Event)
	next      int
	signOuts  int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{listeners: make(map[int]func(identity.Event))}
}

func (f *fakeIdentity) OnChange(fn func(identity.Event)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) Current() *domain.Identity { return nil }

func (f *fakeIdentity) SignOut(context.Context) error {
	f.mu.Lock()
	f.signOuts++
	f.mu.Unlock()
	return nil
}

func (f *fakeIdentity) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *fakeIdentity) emit(ev identity.Event) {
	f.mu.Lock()
	var fns []func(identity.Event)
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

type MockProfiles struct {
	mock.Mock
}

func (m *MockProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func signedIn(uid string) identity.Event {
	return identity.Event{Type: identity.EventSignedIn, Identity: &domain.Identity{UID: uid}}
}

func waitReady(t *testing.T, s *session.Store) {
	t.Helper()
	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("store never became ready")
	}
}

func TestStoreEvents(t *testing.T) {
	ctx := context.Background()
	student := &domain.Profile{ID: "u1", Name: "Ana", Role: domain.RoleStudent}

	t.Run("Should load the profile on sign-in and mirror it to the cache", func(t *testing.T) {
		idc := newFakeIdentity()
		profiles := new(MockProfiles)
		cache := profilecache.NewMemoryCache()
		profiles.On("GetByID", mock.Anything, "u1").Return(student, nil)

		s := session.NewStore("sid", idc, profiles, cache, nil)
		s.Start(ctx)
		defer s.Close()

		assert.True(t, s.Snapshot().Loading)

		idc.emit(signedIn("u1"))
		waitReady(t, s)

		snap := s.Snapshot()
		assert.False(t, snap.Loading)
		require.NotNil(t, snap.Identity)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, domain.RoleStudent, snap.Profile.Role)

		cached, err := cache.Load(ctx, "sid")
		require.NoError(t, err)
		assert.Equal(t, "Ana", cached.Name)
	})

	t.Run("Should never return to loading after the first event", func(t *testing.T) {
		idc := newFakeIdentity()
		profiles := new(MockProfiles)
		profiles.On("GetByID", mock.Anything, "u1").Return(student, nil)

		s := session.NewStore("sid", idc, profiles, profilecache.NewMemoryCache(), nil)
		s.Start(ctx)
		defer s.Close()

		idc.emit(identity.Event{Type: identity.EventInitialSession})
		waitReady(t, s)

		for _, ev := range []identity.Event{signedIn("u1"), {Type: identity.EventSignedOut}, signedIn("u1")} {
			idc.emit(ev)
			require.NoError(t, s.Reload(ctx))
			assert.False(t, s.Snapshot().Loading)
		}
	})

	t.Run("Should expose the cached profile while loading", func(t *testing.T) {
		cache := profilecache.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "sid", student))

		s := session.NewStore("sid", newFakeIdentity(), new(MockProfiles), cache, nil)
		s.Start(ctx)
		defer s.Close()

		snap := s.Snapshot()
		assert.True(t, snap.Loading)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, "u1", snap.Profile.ID)
	})

	t.Run("Should keep the previous profile when the fetch fails", func(t *testing.T) {
		idc := newFakeIdentity()
		profiles := new(MockProfiles)
		cache := profilecache.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "sid", student))
		profiles.On("GetByID", mock.Anything, "u1").Return(nil, errors.New("connection refused"))

		s := session.NewStore("sid", idc, profiles, cache, nil)
		s.Start(ctx)
		defer s.Close()

		idc.emit(signedIn("u1"))
		waitReady(t, s)

		snap := s.Snapshot()
		assert.False(t, snap.Loading)
		require.NotNil(t, snap.Profile)
		assert.Equal(t, "Ana", snap.Profile.Name)
	})

	t.Run("Should clear profile and cache when signed out", func(t *testing.T) {
		idc := newFakeIdentity()
		cache := profilecache.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "sid", student))

		s := session.NewStore("sid", idc, new(MockProfiles), cache, nil)
		s.Start(ctx)
		defer s.Close()

		idc.emit(identity.Event{Type: identity.EventInitialSession})
		waitReady(t, s)

		snap := s.Snapshot()
		assert.Nil(t, snap.Identity)
		assert.Nil(t, snap.Profile)
		_, err := cache.Load(ctx, "sid")
		assert.ErrorIs(t, err, profilecache.ErrMiss)
	})

	t.Run("Should pick up profile writes on reload", func(t *testing.T) {
		idc := newFakeIdentity()
		profiles := new(MockProfiles)
		profiles.On("GetByID", mock.Anything, "u1").Return(student, nil).Once()
		updated := *student
		updated.CareerQuizAnswers = []string{"a", "b", "c"}
		profiles.On("GetByID", mock.Anything, "u1").Return(&updated, nil).Once()

		s := session.NewStore("sid", idc, profiles, profilecache.NewMemoryCache(), nil)
		s.Start(ctx)
		defer s.Close()

		idc.emit(signedIn("u1"))
		waitReady(t, s)
		require.NoError(t, s.Reload(ctx))

		assert.Equal(t, []string{"a", "b", "c"}, s.Snapshot().Profile.CareerQuizAnswers)
	})
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Should unsubscribe on close", func(t *testing.T) {
		idc := newFakeIdentity()
		s := session.NewStore("sid", idc, new(MockProfiles), profilecache.NewMemoryCache(), nil)
		s.Start(ctx)
		assert.Equal(t, 1, idc.subscribers())

		s.Close()
		s.Close()
		assert.Equal(t, 0, idc.subscribers())
		assert.ErrorIs(t, s.Reload(ctx), session.ErrClosed)
	})

	t.Run("Should sign out through the identity client", func(t *testing.T) {
		idc := newFakeIdentity()
		cache := profilecache.NewMemoryCache()
		require.NoError(t, cache.Save(ctx, "sid", &domain.Profile{ID: "u1"}))

		s := session.NewStore("sid", idc, new(MockProfiles), cache, nil)
		s.Start(ctx)
		defer s.Close()

		require.NoError(t, s.SignOut(ctx))
		assert.Equal(t, 1, idc.signOuts)
		assert.Nil(t, s.Snapshot().Profile)
		_, err := cache.Load(ctx, "sid")
		assert.ErrorIs(t, err, profilecache.ErrMiss)
	})
}
