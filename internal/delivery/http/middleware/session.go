package middleware

import (
	"net/http"
	"skillsprint/internal/delivery/http/response"
	"skillsprint/internal/domain"
	"skillsprint/internal/guard"
	"skillsprint/internal/session"
	"skillsprint/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "Session"
	issuerKey  = "SessionIssuer"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
	// ReadyWait bounds how long a guarded request waits for a session
	// that is still loading.
	ReadyWait time.Duration
}

type issuer struct {
	manager *session.Manager
	cfg     SessionConfig
}

func (i *issuer) setCookie(c *gin.Context, sid string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(i.cfg.CookieName, sid, maxAge, "/", "", i.cfg.Secure, true)
}

// Sessions attaches the caller's session when the cookie names one the
// manager knows. Unknown cookies are expired. No session is created here;
// sign-in handlers start one with BeginSession.
func Sessions(manager *session.Manager, cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = "ss_session"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}
	iss := &issuer{manager: manager, cfg: cfg}

	return func(c *gin.Context) {
		c.Set(issuerKey, iss)

		sid, err := c.Cookie(cfg.CookieName)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		sess, ok := manager.Lookup(c.Request.Context(), sid)
		if !ok {
			iss.setCookie(c, "", -1)
			c.Next()
			return
		}
		if err := sess.Client.EnsureFresh(c.Request.Context()); err != nil {
			logger.Log.Warn("Session token refresh failed", "session_id", sid, "error", err)
		}

		c.Set(sessionKey, sess)
		c.Set(string(domain.KeySessionID), sid)
		c.Next()
	}
}

// CurrentSession returns the session attached by Sessions, or nil.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

func currentIssuer(c *gin.Context) *issuer {
	v, ok := c.Get(issuerKey)
	if !ok {
		return nil
	}
	iss, _ := v.(*issuer)
	return iss
}

// BeginSession starts a session under a fresh id for a sign-in attempt.
// It returns nil when Sessions is not installed. Every call must be paired
// with FinishSession.
func BeginSession(c *gin.Context) *session.Session {
	iss := currentIssuer(c)
	if iss == nil {
		return nil
	}
	return iss.manager.Begin(c.Request.Context())
}

// FinishSession keeps sess as the caller's session when signedIn, replacing
// any previous one and issuing its cookie. Otherwise sess is discarded and
// the previous session stays in place.
func FinishSession(c *gin.Context, sess *session.Session, signedIn bool) {
	iss := currentIssuer(c)
	if iss == nil || sess == nil {
		return
	}
	ctx := c.Request.Context()
	if !signedIn {
		iss.manager.Discard(ctx, sess.ID)
		return
	}

	if prev := CurrentSession(c); prev != nil && prev.ID != sess.ID {
		iss.manager.Discard(ctx, prev.ID)
	}
	iss.setCookie(c, sess.ID, int(iss.cfg.MaxAge.Seconds()))
	c.Set(sessionKey, sess)
	c.Set(string(domain.KeySessionID), sess.ID)
}

// EndSession discards the caller's session and expires its cookie.
func EndSession(c *gin.Context) {
	iss := currentIssuer(c)
	if iss == nil {
		return
	}
	if sess := CurrentSession(c); sess != nil {
		iss.manager.Discard(c.Request.Context(), sess.ID)
	}
	iss.setCookie(c, "", -1)
	c.Set(sessionKey, (*session.Session)(nil))
}

// RequireSession gates a view on the route guard. A nil role admits any
// signed-in user. Loading sessions get 202 with Retry-After, redirects
// 303 with Location.
func RequireSession(required *domain.Role, readyWait time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Without a session the caller is plainly signed out.
		var snap session.Snapshot
		sess := CurrentSession(c)
		if sess != nil {
			snap = sess.Store.Snapshot()
		}
		if snap.Loading && readyWait > 0 {
			select {
			case <-sess.Store.Ready():
			case <-time.After(readyWait):
			case <-c.Request.Context().Done():
			}
			snap = sess.Store.Snapshot()
		}

		decision := guard.Decide(guard.State{
			Loading:  snap.Loading,
			Identity: snap.Identity,
			Profile:  snap.Profile,
			Path:     c.Request.URL.RequestURI(),
		}, required)

		switch decision.Action {
		case guard.Wait:
			response.Loading(c, http.StatusAccepted)
			c.Abort()
			return
		case guard.RedirectLogin, guard.RedirectHome:
			response.Redirect(c, http.StatusSeeOther, decision.Location)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), snap.Identity.UID)
		c.Set(string(domain.KeyUserEmail), snap.Identity.Email)
		if snap.Profile != nil {
			c.Set(string(domain.KeyUserRole), string(snap.Profile.Role))
			c.Set(string(domain.KeyProfile), snap.Profile)
		}
		c.Next()
	}
}

// CurrentProfile returns the profile RequireSession placed on the context.
func CurrentProfile(c *gin.Context) *domain.Profile {
	v, ok := c.Get(string(domain.KeyProfile))
	if !ok {
		return nil
	}
	p, _ := v.(*domain.Profile)
	return p
}
