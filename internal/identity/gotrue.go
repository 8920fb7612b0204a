package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"skillsprint/internal/domain"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("identity: invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("identity: email not confirmed")
	ErrUnavailable        = errors.New("identity: provider unavailable")
)

// ProviderError carries the identity provider's own message for 4xx answers
// that are not credential failures (weak password, already registered...).
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity: provider returned %d: %s", e.Status, e.Message)
}

// Session is what the provider hands back on every successful grant.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         domain.Identity
}

// Provider is the remote identity service.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*Session, error)
	SignInWithIDToken(ctx context.Context, provider, idToken string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// GoTrue talks to a Supabase Auth (GoTrue) endpoint over REST.
type GoTrue struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGoTrue(baseURL, apiKey string) *GoTrue {
	return &GoTrue{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
		Picture   string `json:"picture"`
	} `json:"user_metadata"`
}

type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *gotrueUser `json:"user"`
}

func (u *gotrueUser) identity() domain.Identity {
	name := u.UserMetadata.FullName
	if name == "" {
		name = u.UserMetadata.Name
	}
	photo := u.UserMetadata.AvatarURL
	if photo == "" {
		photo = u.UserMetadata.Picture
	}
	return domain.Identity{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: name,
		PhotoURL:    photo,
	}
}

func (g *GoTrue) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return g.token(ctx, "password", map[string]interface{}{
		"email":    email,
		"password": password,
	})
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string, data map[string]interface{}) (*Session, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}
	if len(data) > 0 {
		body["data"] = data
	}

	raw, err := g.post(ctx, "/auth/v1/signup", "", body)
	if err != nil {
		return nil, err
	}

	// With autoconfirm the answer is a session; otherwise it is the bare user.
	var sess gotrueSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("identity: decode signup response: %w", err)
	}
	if sess.User == nil {
		var user gotrueUser
		if err := json.Unmarshal(raw, &user); err != nil {
			return nil, fmt.Errorf("identity: decode signup user: %w", err)
		}
		return &Session{User: user.identity()}, nil
	}
	return sess.toSession(time.Now()), nil
}

func (g *GoTrue) SignInWithIDToken(ctx context.Context, provider, idToken string) (*Session, error) {
	return g.token(ctx, "id_token", map[string]interface{}{
		"provider": provider,
		"id_token": idToken,
	})
}

func (g *GoTrue) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return g.token(ctx, "refresh_token", map[string]interface{}{
		"refresh_token": refreshToken,
	})
}

func (g *GoTrue) SignOut(ctx context.Context, accessToken string) error {
	_, err := g.post(ctx, "/auth/v1/logout", accessToken, nil)
	return err
}

func (g *GoTrue) token(ctx context.Context, grant string, body map[string]interface{}) (*Session, error) {
	raw, err := g.post(ctx, "/auth/v1/token?grant_type="+url.QueryEscape(grant), "", body)
	if err != nil {
		return nil, err
	}

	var sess gotrueSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("identity: decode token response: %w", err)
	}
	if sess.AccessToken == "" || sess.User == nil {
		return nil, fmt.Errorf("identity: token response without session")
	}
	return sess.toSession(time.Now()), nil
}

func (s *gotrueSession) toSession(now time.Time) *Session {
	out := &Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	switch {
	case s.ExpiresAt > 0:
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	case s.ExpiresIn > 0:
		out.ExpiresAt = now.Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	if s.User != nil {
		out.User = s.User.identity()
	}
	out.User.AccessToken = s.AccessToken
	out.User.ExpiresAt = out.ExpiresAt
	return out
}

func (g *GoTrue) post(ctx context.Context, path, bearer string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", g.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, providerError(resp.StatusCode, buf.Bytes())
	}
	return buf.Bytes(), nil
}

func providerError(status int, body []byte) error {
	var errResp struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		ErrorCode        string `json:"error_code"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Msg
	if msg == "" {
		msg = errResp.ErrorDescription
	}
	if msg == "" {
		msg = errResp.Message
	}

	switch {
	case msg == "Invalid login credentials" || errResp.ErrorCode == "invalid_credentials":
		return ErrInvalidCredentials
	case msg == "Email not confirmed" || errResp.ErrorCode == "email_not_confirmed":
		return ErrEmailNotConfirmed
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &ProviderError{Status: status, Message: msg}
}
