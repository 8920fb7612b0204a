package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"skillsprint/internal/delivery/http/middleware"
	"skillsprint/internal/domain"
	"skillsprint/internal/guard"
	"skillsprint/internal/identity"
	"skillsprint/internal/profilecache"
	"skillsprint/internal/session"
	"skillsprint/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("RequestID"))
	})

	t.Run("Should generate an id when none is sent", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		id := w.Header().Get(middleware.RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("Should reuse a well-formed incoming id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, incoming)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, incoming, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("Should replace a malformed incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(middleware.RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", w.Header().Get(middleware.RequestIDHeader))
	})
}

func TestErrorHandler(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperror.Conflict("Email already registered"))
	})
	router.GET("/validation", func(c *gin.Context) {
		_ = c.Error(validator.New().Struct(payload{Email: "nope"}))
	})
	router.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: relation does not exist"))
	})
	router.GET("/written", func(c *gin.Context) {
		c.String(http.StatusTeapot, "already")
		_ = c.Error(errors.New("late"))
	})

	decode := func(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	t.Run("Should map an AppError to its status and message", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already registered", decode(t, w)["message"])
	})

	t.Run("Should answer 400 with field errors for validation failures", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Validation failed", body["message"])
		assert.NotNil(t, body["error"])
	})

	t.Run("Should hide internal error details", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "relation")
	})

	t.Run("Should leave an already written response alone", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))

		assert.Equal(t, http.StatusTeapot, w.Code)
		assert.Equal(t, "already", w.Body.String())
	})
}

func TestCSRFMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(middleware.CSRFMiddleware(false, "/login"))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/form", ok)
	router.POST("/form", ok)
	router.POST("/login", ok)

	csrfCookie := func(w *httptest.ResponseRecorder) *http.Cookie {
		for _, ck := range w.Result().Cookies() {
			if ck.Name == middleware.CSRFTokenCookieName {
				return ck
			}
		}
		return nil
	}

	t.Run("Should issue a readable token cookie on safe requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/form", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		ck := csrfCookie(w)
		require.NotNil(t, ck)
		assert.False(t, ck.HttpOnly)
		assert.Len(t, ck.Value, middleware.CSRFTokenLength*2)
	})

	t.Run("Should reject a state change without the header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should reject a header that does not match the cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "abd")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Should accept a matching header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/form", nil)
		req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: "abc"})
		req.Header.Set(middleware.CSRFTokenHeaderName, "abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Should let exempt paths through", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiterLocal(t *testing.T) {
	rl := middleware.NewRateLimiter(nil, nil)
	router := gin.New()
	router.POST("/login", rl.Middleware(middleware.AuthRateLimitConfig(2, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Should allow up to the limit and then answer 429", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
		assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

		w := send("10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("Should count each client separately", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
	})
}

type stubProvider struct {
	refreshed *identity.Session
	signedIn  *identity.Session
}

func (p *stubProvider) SignInWithPassword(_ context.Context, _, password string) (*identity.Session, error) {
	if p.signedIn == nil || password != "secret1" {
		return nil, identity.ErrInvalidCredentials
	}
	return p.signedIn, nil
}

func (p *stubProvider) SignUp(context.Context, string, string, map[string]interface{}) (*identity.Session, error) {
	return nil, identity.ErrUnavailable
}

func (p *stubProvider) SignInWithIDToken(context.Context, string, string) (*identity.Session, error) {
	return nil, identity.ErrUnavailable
}

func (p *stubProvider) Refresh(context.Context, string) (*identity.Session, error) {
	if p.refreshed == nil {
		return nil, identity.ErrInvalidCredentials
	}
	return p.refreshed, nil
}

func (p *stubProvider) SignOut(context.Context, string) error { return nil }

type staticProfiles struct {
	profile *domain.Profile
	release chan struct{}
}

func (s *staticProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.profile == nil || s.profile.ID != id {
		return nil, domain.ErrNotFound
	}
	return s.profile, nil
}

func signedInManager(t *testing.T, sid string, profiles *staticProfiles) *session.Manager {
	t.Helper()
	tokens := identity.NewMemoryTokenStore()
	require.NoError(t, tokens.Set(context.Background(), sid, "r1", time.Hour))
	return session.NewManager(session.ManagerConfig{
		Provider: &stubProvider{refreshed: &identity.Session{
			AccessToken:  "at",
			RefreshToken: "r2",
			ExpiresAt:    time.Now().Add(time.Hour),
			User:         domain.Identity{UID: "u1", Email: "ana@example.com"},
		}},
		Tokens:   tokens,
		Profiles: profiles,
		Cache:    profilecache.NewMemoryCache(),
	})
}

func guardedRouter(m *session.Manager, readyWait time.Duration) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Sessions(m, middleware.SessionConfig{CookieName: "sid"}))
	student := router.Group("/student", middleware.RequireSession(guard.Require(domain.RoleStudent), readyWait))
	student.GET("", func(c *gin.Context) {
		p := middleware.CurrentProfile(c)
		c.String(http.StatusOK, c.GetString(string(domain.KeyUserID))+":"+string(p.Role))
	})
	recruiter := router.Group("/recruiter", middleware.RequireSession(guard.Require(domain.RoleRecruiter), readyWait))
	recruiter.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestSessions(t *testing.T) {
	newRouter := func(m *session.Manager) *gin.Engine {
		router := gin.New()
		router.Use(middleware.Sessions(m, middleware.SessionConfig{CookieName: "sid"}))
		router.GET("/who", func(c *gin.Context) {
			sess := middleware.CurrentSession(c)
			if sess == nil {
				c.String(http.StatusOK, "anonymous")
				return
			}
			c.String(http.StatusOK, sess.Client.Current().Email)
		})
		router.POST("/login", func(c *gin.Context) {
			sess := middleware.BeginSession(c)
			_, err := sess.SignInWithPassword(c.Request.Context(), "ana@example.com", c.Query("password"))
			middleware.FinishSession(c, sess, err == nil)
			if err != nil {
				c.Status(http.StatusUnauthorized)
				return
			}
			c.Status(http.StatusOK)
		})
		return router
	}
	send := func(router *gin.Engine, method, path, sid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	newManager := func(tokens identity.TokenStore) *session.Manager {
		return session.NewManager(session.ManagerConfig{
			Provider: &stubProvider{signedIn: &identity.Session{
				AccessToken:  "at",
				RefreshToken: "r9",
				ExpiresAt:    time.Now().Add(time.Hour),
				User:         domain.Identity{UID: "u1", Email: "ana@example.com"},
			}},
			Tokens:   tokens,
			Profiles: &staticProfiles{},
			Cache:    profilecache.NewMemoryCache(),
		})
	}

	t.Run("Should not create sessions for visitors without a cookie", func(t *testing.T) {
		m := newManager(identity.NewMemoryTokenStore())
		defer m.Shutdown()
		router := newRouter(m)

		for i := 0; i < 20; i++ {
			w := send(router, http.MethodGet, "/who", "")
			require.Equal(t, "anonymous", w.Body.String())
			assert.Empty(t, w.Result().Cookies())
		}
		assert.Equal(t, 0, m.Len())
	})

	t.Run("Should expire cookies the manager never issued", func(t *testing.T) {
		m := newManager(identity.NewMemoryTokenStore())
		defer m.Shutdown()
		router := newRouter(m)

		for _, sid := range []string{"attacker-chosen", uuid.NewString()} {
			w := send(router, http.MethodGet, "/who", sid)
			assert.Equal(t, "anonymous", w.Body.String())
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "sid", cookies[0].Name)
			assert.Less(t, cookies[0].MaxAge, 0)
		}
		assert.Equal(t, 0, m.Len())
	})

	t.Run("Should issue a new session id on sign-in", func(t *testing.T) {
		tokens := identity.NewMemoryTokenStore()
		m := newManager(tokens)
		defer m.Shutdown()
		router := newRouter(m)

		planted := uuid.NewString()
		require.NoError(t, tokens.Set(context.Background(), planted, "r1", time.Hour))

		w := send(router, http.MethodPost, "/login?password=secret1", planted)
		require.Equal(t, http.StatusOK, w.Code)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		fresh := cookies[0].Value
		assert.NotEqual(t, planted, fresh)
		assert.True(t, session.ValidSessionID(fresh))
		assert.True(t, cookies[0].HttpOnly)

		assert.Equal(t, "ana@example.com", send(router, http.MethodGet, "/who", fresh).Body.String())
		assert.Equal(t, "anonymous", send(router, http.MethodGet, "/who", planted).Body.String())
		_, err := tokens.Get(context.Background(), planted)
		assert.ErrorIs(t, err, identity.ErrNoToken)
	})

	t.Run("Should drop the attempt when sign-in fails", func(t *testing.T) {
		m := newManager(identity.NewMemoryTokenStore())
		defer m.Shutdown()
		router := newRouter(m)

		w := send(router, http.MethodPost, "/login?password=wrong", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Empty(t, w.Result().Cookies())
		assert.Equal(t, 0, m.Len())
	})
}

func TestRequireSession(t *testing.T) {
	sid1, sid2, sid3, sid4 := uuid.NewString(), uuid.NewString(), uuid.NewString(), uuid.NewString()
	get := func(router *gin.Engine, path, sid string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if sid != "" {
			req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Should redirect an anonymous visitor to login with the view", func(t *testing.T) {
		m := session.NewManager(session.ManagerConfig{
			Provider: &stubProvider{},
			Tokens:   identity.NewMemoryTokenStore(),
			Profiles: &staticProfiles{},
			Cache:    profilecache.NewMemoryCache(),
		})
		defer m.Shutdown()

		w := get(guardedRouter(m, time.Second), "/student", "")

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login?from=%2Fstudent", w.Header().Get("Location"))
		assert.Contains(t, w.Body.String(), `"state":"redirect"`)
	})

	t.Run("Should render for the matching role", func(t *testing.T) {
		m := signedInManager(t, sid1, &staticProfiles{profile: &domain.Profile{ID: "u1", Role: domain.RoleStudent}})
		defer m.Shutdown()

		w := get(guardedRouter(m, time.Second), "/student", sid1)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1:student", w.Body.String())
	})

	t.Run("Should send the wrong role to its own home", func(t *testing.T) {
		m := signedInManager(t, sid2, &staticProfiles{profile: &domain.Profile{ID: "u1", Role: domain.RoleStudent}})
		defer m.Shutdown()

		w := get(guardedRouter(m, time.Second), "/recruiter", sid2)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/student", w.Header().Get("Location"))
	})

	t.Run("Should send a user without a profile away from the recruiter view to signup", func(t *testing.T) {
		m := signedInManager(t, sid3, &staticProfiles{})
		defer m.Shutdown()

		w := get(guardedRouter(m, time.Second), "/recruiter", sid3)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/signup", w.Header().Get("Location"))
	})

	t.Run("Should answer 202 while the session is still loading", func(t *testing.T) {
		profiles := &staticProfiles{
			profile: &domain.Profile{ID: "u1", Role: domain.RoleStudent},
			release: make(chan struct{}),
		}
		m := signedInManager(t, sid4, profiles)
		defer m.Shutdown()
		defer close(profiles.release)

		w := get(guardedRouter(m, 0), "/student", sid4)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.True(t, strings.Contains(w.Body.String(), `"state":"loading"`))
	})
}
