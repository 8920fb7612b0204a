package domain

import "context"

// AuthSession is the caller's browser session as the sign-in flows see it.
type AuthSession interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password, name string) (*Identity, error)
	SignInWithGoogle(ctx context.Context, idToken string) (*Identity, error)
	SignOut(ctx context.Context) error
	// Reload re-reads the profile into the session after it was written.
	Reload(ctx context.Context) error
}

// RequestMeta identifies the HTTP request for the audit log.
type RequestMeta struct {
	IP        string
	RequestID string
}

type SignUpInput struct {
	Name            string `json:"name" binding:"required,max=100,valid_name"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Role            Role   `json:"role" binding:"required,oneof=student recruiter"`
}

type SignInInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResult tells the client where to go next.
type AuthResult struct {
	Identity             *Identity `json:"identity"`
	Profile              *Profile  `json:"profile,omitempty"`
	Redirect             string    `json:"redirect"`
	ConfirmationRequired bool      `json:"confirmation_required,omitempty"`
}

type AuthUsecase interface {
	SignUp(ctx context.Context, sess AuthSession, in SignUpInput, meta RequestMeta) (*AuthResult, error)
	SignIn(ctx context.Context, sess AuthSession, in SignInInput, meta RequestMeta) (*AuthResult, error)
	SignInWithGoogle(ctx context.Context, sess AuthSession, idToken string, role Role, meta RequestMeta) (*AuthResult, error)
	SignOut(ctx context.Context, sess AuthSession, userID string, meta RequestMeta) error
}
