package identity

import (
	"context"
	"errors"
	"fmt"
	"skillsprint/internal/domain"
	"skillsprint/pkg/auth"
	"skillsprint/pkg/logger"
	"sync"
	"time"
)

var ErrNoSession = errors.New("identity: not signed in")

type EventType string

const (
	EventInitialSession EventType = "INITIAL_SESSION"
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is delivered to subscribers on every identity change. Identity is
// nil when nobody is signed in.
type Event struct {
	Type     EventType
	Identity *domain.Identity
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// refreshLeeway is how long before expiry EnsureFresh renews the session.
const refreshLeeway = time.Minute

// Client is the identity state of one browser session.
type Client struct {
	sessionID string
	provider  Provider
	tokens    TokenStore
	verifier  TokenVerifier
	tokenTTL  time.Duration

	// transition orders state changes with the events that announce them.
	transition sync.Mutex

	mu        sync.Mutex
	current   *Session
	gen       uint64
	listeners map[int]func(Event)
	nextID    int
}

// NewClient builds the client for one session id. verifier may be nil, in
// which case provider answers are trusted as is.
func NewClient(sessionID string, provider Provider, tokens TokenStore, verifier TokenVerifier, tokenTTL time.Duration) *Client {
	return &Client{
		sessionID: sessionID,
		provider:  provider,
		tokens:    tokens,
		verifier:  verifier,
		tokenTTL:  tokenTTL,
		listeners: make(map[int]func(Event)),
	}
}

func (c *Client) SessionID() string { return c.sessionID }

// OnChange registers fn for identity events and returns its unsubscribe
// function. fn runs on the goroutine that caused the change.
func (c *Client) OnChange(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Current returns a copy of the signed-in identity, or nil.
func (c *Client) Current() *domain.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	id := c.current.User
	return &id
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Identity, error) {
	sess, err := c.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, sess, EventSignedIn)
}

// SignUp creates the account. When the provider requires email confirmation
// no session is opened and the returned identity is not current.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*domain.Identity, error) {
	sess, err := c.provider.SignUp(ctx, email, password, map[string]interface{}{"full_name": name})
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		id := sess.User
		return &id, nil
	}
	return c.adopt(ctx, sess, EventSignedIn)
}

func (c *Client) SignInWithGoogle(ctx context.Context, idToken string) (*domain.Identity, error) {
	sess, err := c.provider.SignInWithIDToken(ctx, "google", idToken)
	if err != nil {
		return nil, err
	}
	return c.adopt(ctx, sess, EventSignedIn)
}

// Restore re-establishes the session from the stored refresh token. It
// emits exactly one event, signed out when nothing could be restored, unless
// a sign-in or sign-out happened while it ran.
func (c *Client) Restore(ctx context.Context) error {
	gen := c.generation()

	refreshToken, err := c.tokens.Get(ctx, c.sessionID)
	if err != nil {
		c.settle(gen, func() { c.emit(Event{Type: EventInitialSession}) })
		if errors.Is(err, ErrNoToken) {
			return nil
		}
		return fmt.Errorf("identity: read refresh token: %w", err)
	}
	if c.generation() != gen {
		return nil
	}

	sess, err := c.provider.Refresh(ctx, refreshToken)
	if err != nil {
		c.settle(gen, func() {
			if !errors.Is(err, ErrUnavailable) {
				_ = c.tokens.Delete(ctx, c.sessionID)
			}
			c.emit(Event{Type: EventInitialSession})
		})
		return err
	}

	if err := c.verify(sess); err != nil {
		c.settle(gen, func() { c.emit(Event{Type: EventInitialSession}) })
		return err
	}
	c.settle(gen, func() { c.install(ctx, sess, EventInitialSession) })
	return nil
}

// EnsureFresh refreshes the access token when it is about to expire.
func (c *Client) EnsureFresh(ctx context.Context) error {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()

	if cur == nil || cur.ExpiresAt.IsZero() || time.Until(cur.ExpiresAt) > refreshLeeway {
		return nil
	}
	return c.Refresh(ctx)
}

func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	cur, gen := c.current, c.gen
	c.mu.Unlock()
	if cur == nil {
		return ErrNoSession
	}

	sess, err := c.provider.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		// The refresh token was revoked or reused; the session is over.
		c.settle(gen, func() { c.reset(ctx) })
		return err
	}
	if err := c.verify(sess); err != nil {
		return err
	}
	c.settle(gen, func() { c.install(ctx, sess, EventTokenRefreshed) })
	return nil
}

// SignOut ends the session locally even when the provider call fails.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()

	var err error
	if cur != nil {
		if err = c.provider.SignOut(ctx, cur.AccessToken); err != nil {
			logger.Log.Warn("Identity provider sign-out failed", "session_id", c.sessionID, "error", err)
		}
	}
	c.clear(ctx)
	return err
}

func (c *Client) clear(ctx context.Context) {
	c.transition.Lock()
	defer c.transition.Unlock()
	c.reset(ctx)
}

func (c *Client) adopt(ctx context.Context, sess *Session, typ EventType) (*domain.Identity, error) {
	if err := c.verify(sess); err != nil {
		return nil, err
	}

	c.transition.Lock()
	defer c.transition.Unlock()
	return c.install(ctx, sess, typ), nil
}

// settle runs fn under the transition lock unless the state moved on since
// gen was read.
func (c *Client) settle(gen uint64, fn func()) {
	c.transition.Lock()
	defer c.transition.Unlock()
	if c.generation() == gen {
		fn()
	}
}

func (c *Client) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Client) verify(sess *Session) error {
	if c.verifier == nil {
		return nil
	}
	claims, err := c.verifier.Verify(sess.AccessToken)
	if err != nil {
		return err
	}
	if claims.Subject != sess.User.UID {
		return fmt.Errorf("%w: subject mismatch", auth.ErrInvalidToken)
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = claims.ExpiresAt
		sess.User.ExpiresAt = claims.ExpiresAt
	}
	return nil
}

// install and reset must be called with transition held.
func (c *Client) install(ctx context.Context, sess *Session, typ EventType) *domain.Identity {
	if sess.RefreshToken != "" {
		if err := c.tokens.Set(ctx, c.sessionID, sess.RefreshToken, c.tokenTTL); err != nil {
			logger.Log.Warn("Failed to persist refresh token", "session_id", c.sessionID, "error", err)
		}
	}

	c.mu.Lock()
	c.current = sess
	c.gen++
	c.mu.Unlock()

	id := sess.User
	c.emit(Event{Type: typ, Identity: &id})
	return &id
}

func (c *Client) reset(ctx context.Context) {
	if err := c.tokens.Delete(ctx, c.sessionID); err != nil {
		logger.Log.Warn("Failed to delete refresh token", "session_id", c.sessionID, "error", err)
	}
	c.mu.Lock()
	c.current = nil
	c.gen++
	c.mu.Unlock()
	c.emit(Event{Type: EventSignedOut})
}

func (c *Client) emit(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
