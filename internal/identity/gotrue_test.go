package identity_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillsprint/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoTrue(t *testing.T) {
	ctx := context.Background()

	t.Run("Should sign in with password and map the user", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "anon-key", r.Header.Get("apikey"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana@example.com", body["email"])

			_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,
				"user":{"id":"u1","email":"ana@example.com","user_metadata":{"full_name":"Ana","avatar_url":"http://img"}}}`))
		}))
		defer srv.Close()

		sess, err := identity.NewGoTrue(srv.URL, "anon-key").SignInWithPassword(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "at", sess.AccessToken)
		assert.Equal(t, "rt", sess.RefreshToken)
		assert.Equal(t, "u1", sess.User.UID)
		assert.Equal(t, "Ana", sess.User.DisplayName)
		assert.Equal(t, "http://img", sess.User.PhotoURL)
		assert.False(t, sess.ExpiresAt.IsZero())
	})

	t.Run("Should map invalid credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
		}))
		defer srv.Close()

		_, err := identity.NewGoTrue(srv.URL, "k").SignInWithPassword(ctx, "ana@example.com", "bad")
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("Should surface provider messages on sign-up failures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"code":422,"msg":"User already registered"}`))
		}))
		defer srv.Close()

		_, err := identity.NewGoTrue(srv.URL, "k").SignUp(ctx, "ana@example.com", "secret1", nil)
		var perr *identity.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "User already registered", perr.Message)
	})

	t.Run("Should return the bare user when confirmation is required", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/signup", r.URL.Path)
			_, _ = w.Write([]byte(`{"id":"u2","email":"bo@example.com"}`))
		}))
		defer srv.Close()

		sess, err := identity.NewGoTrue(srv.URL, "k").SignUp(ctx, "bo@example.com", "secret1", map[string]interface{}{"full_name": "Bo"})
		require.NoError(t, err)
		assert.Empty(t, sess.AccessToken)
		assert.Equal(t, "u2", sess.User.UID)
	})

	t.Run("Should treat server errors as unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := identity.NewGoTrue(srv.URL, "k").Refresh(ctx, "rt")
		assert.ErrorIs(t, err, identity.ErrUnavailable)
	})
}
