package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("top-secret", nil)

	t.Run("Should accept a valid HS256 token", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		tok := signHS256(t, "top-secret", jwt.MapClaims{
			"sub":   "user-1",
			"email": "ana@example.com",
			"exp":   exp.Unix(),
		})

		claims, err := v.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.Subject)
		assert.Equal(t, "ana@example.com", claims.Email)
		assert.True(t, claims.ExpiresAt.Equal(exp))
	})

	t.Run("Should reject a token signed with another secret", func(t *testing.T) {
		tok := signHS256(t, "other", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject an expired token", func(t *testing.T) {
		tok := signHS256(t, "top-secret", jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject a token without an expiry", func(t *testing.T) {
		tok := signHS256(t, "top-secret", jwt.MapClaims{"sub": "user-1", "email": "ana@example.com"})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject a token without subject", func(t *testing.T) {
		tok := signHS256(t, "top-secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		_, err := v.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifierJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		e := big.NewInt(int64(key.PublicKey.E)).Bytes()
		_ = json.NewEncoder(w).Encode(JWKS{Keys: []JSONWebKey{{
			Kid: "k1",
			Kty: "RSA",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(e),
		}}})
	}))
	defer srv.Close()

	v := NewVerifier("", NewProvider(srv.URL))

	sign := func(kid string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "user-9", "exp": time.Now().Add(time.Hour).Unix()})
		tok.Header["kid"] = kid
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	t.Run("Should verify RS256 tokens against the key set", func(t *testing.T) {
		claims, err := v.Verify(sign("k1"))
		require.NoError(t, err)
		assert.Equal(t, "user-9", claims.Subject)

		_, err = v.Verify(sign("k1"))
		require.NoError(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Should reject an unknown kid", func(t *testing.T) {
		_, err := v.Verify(sign("k2"))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Should reject HS256 tokens when no secret is configured", func(t *testing.T) {
		_, err := v.Verify(signHS256(t, "x", jwt.MapClaims{"sub": "u", "exp": time.Now().Add(time.Hour).Unix()}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
