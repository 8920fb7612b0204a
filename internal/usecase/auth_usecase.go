package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"skillsprint/internal/domain"
	"skillsprint/internal/identity"
	"skillsprint/pkg/apperror"
	"skillsprint/pkg/auth"
	"skillsprint/pkg/logger"
	"skillsprint/pkg/security"
	"strings"
	"time"
)

const minPasswordLength = 6

// LoginTracker throttles repeated password failures per email.
type LoginTracker interface {
	IsBlocked(ctx context.Context, email string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip, requestID string) (bool, int, error)
	ClearAttempts(ctx context.Context, email string) error
}

type authUsecase struct {
	profiles domain.ProfileRepository
	tracker  LoginTracker
	audit    *security.SecurityLogger
	now      func() time.Time
}

func NewAuthUsecase(profiles domain.ProfileRepository, tracker LoginTracker, audit *security.SecurityLogger) domain.AuthUsecase {
	if audit == nil {
		audit = security.NopSecurityLogger()
	}
	return &authUsecase{
		profiles: profiles,
		tracker:  tracker,
		audit:    audit,
		now:      time.Now,
	}
}

func (u *authUsecase) SignUp(ctx context.Context, sess domain.AuthSession, in domain.SignUpInput, meta domain.RequestMeta) (*domain.AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.Name == "":
		return nil, apperror.BadRequest("Name is required")
	case in.Email == "":
		return nil, apperror.BadRequest("Email is required")
	case len(in.Password) < minPasswordLength:
		return nil, apperror.BadRequest("Password must be at least 6 characters")
	case in.Password != in.ConfirmPassword:
		return nil, apperror.BadRequest("Passwords do not match")
	case !in.Role.Valid():
		return nil, apperror.BadRequest("Role must be student or recruiter")
	}

	id, err := sess.SignUp(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return nil, identityError(err)
	}

	email := id.Email
	if email == "" {
		email = in.Email
	}
	profile := domain.NewProfile(id.UID, email, in.Name, in.Role, optional(id.PhotoURL), u.now())
	if err := u.profiles.Put(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrRoleConflict) {
			u.audit.LogRoleConflict(id.UID, "", string(in.Role), meta.RequestID)
			return nil, apperror.Conflict("This account is already registered with a different role.")
		}
		return nil, apperror.Internal(fmt.Errorf("create profile: %w", err))
	}

	u.audit.Log(security.SecurityEvent{
		Event:        security.EventSignUp,
		SubjectType:  "user_id",
		SubjectValue: id.UID,
		IP:           meta.IP,
		RequestID:    meta.RequestID,
		Details:      map[string]interface{}{"role": in.Role},
	})

	result := &domain.AuthResult{Identity: id, Profile: profile, Redirect: in.Role.SignInPath()}
	if id.AccessToken == "" {
		// Email confirmation pending: no session was opened.
		result.ConfirmationRequired = true
		result.Redirect = "/login?role=" + url.QueryEscape(string(in.Role))
		return result, nil
	}
	u.reload(ctx, sess)
	return result, nil
}

func (u *authUsecase) SignIn(ctx context.Context, sess domain.AuthSession, in domain.SignInInput, meta domain.RequestMeta) (*domain.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if u.tracker != nil {
		blocked, err := u.tracker.IsBlocked(ctx, email)
		if err != nil {
			logger.Log.Warn("Login tracker unavailable", "error", err)
		}
		if blocked {
			u.audit.LogLoginBlocked(email, meta.IP, meta.RequestID)
			return nil, apperror.TooManyRequests("Too many failed sign-in attempts. Please try again later.")
		}
	}

	id, err := sess.SignInWithPassword(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) && u.tracker != nil {
			if _, _, terr := u.tracker.RecordFailedAttempt(ctx, email, meta.IP, meta.RequestID); terr != nil {
				logger.Log.Warn("Failed to record login attempt", "error", terr)
			}
		}
		return nil, identityError(err)
	}

	if u.tracker != nil {
		if err := u.tracker.ClearAttempts(ctx, email); err != nil {
			logger.Log.Warn("Failed to clear login attempts", "error", err)
		}
	}
	u.audit.LogLoginSuccess(id.UID, meta.IP, meta.RequestID, "password")

	result := &domain.AuthResult{Identity: id}
	profile, err := u.profiles.GetByID(ctx, id.UID)
	switch {
	case err == nil:
		result.Profile = profile
		result.Redirect = profile.Role.SignInPath()
	case errors.Is(err, domain.ErrNotFound):
		result.Redirect = "/signup"
	default:
		// The session store keeps retrying on its own; let the guard route.
		logger.Log.Error("Failed to fetch profile after sign-in", "user_id", id.UID, "error", err)
		result.Redirect = "/"
	}
	return result, nil
}

// SignInWithGoogle refuses to touch a profile stored under another role.
// Otherwise the profile is created, or its account fields refreshed while
// quiz answers and recommendations stay as stored.
func (u *authUsecase) SignInWithGoogle(ctx context.Context, sess domain.AuthSession, idToken string, role domain.Role, meta domain.RequestMeta) (*domain.AuthResult, error) {
	if !role.Valid() {
		return nil, apperror.BadRequest("Role must be student or recruiter")
	}

	id, err := sess.SignInWithGoogle(ctx, idToken)
	if err != nil {
		return nil, identityError(err)
	}

	existing, err := u.profiles.GetByID(ctx, id.UID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(fmt.Errorf("fetch profile: %w", err))
	}
	if existing != nil && existing.Role != role {
		u.audit.LogRoleConflict(id.UID, string(existing.Role), string(role), meta.RequestID)
		return nil, roleConflict(existing.Role)
	}

	profile := domain.NewProfile(id.UID, id.Email, id.DisplayName, role, optional(id.PhotoURL), u.now())
	if err := u.profiles.Put(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrRoleConflict) {
			u.audit.LogRoleConflict(id.UID, "", string(role), meta.RequestID)
			return nil, roleConflict("")
		}
		return nil, apperror.Internal(fmt.Errorf("write profile: %w", err))
	}
	if existing != nil {
		profile = existing
		profile.Email = id.Email
		profile.Name = id.DisplayName
		if id.PhotoURL != "" {
			profile.ProfileImage = optional(id.PhotoURL)
		}
	}

	u.audit.LogLoginSuccess(id.UID, meta.IP, meta.RequestID, "google")
	u.reload(ctx, sess)
	return &domain.AuthResult{Identity: id, Profile: profile, Redirect: role.SignInPath()}, nil
}

func (u *authUsecase) SignOut(ctx context.Context, sess domain.AuthSession, userID string, meta domain.RequestMeta) error {
	err := sess.SignOut(ctx)
	u.audit.Log(security.SecurityEvent{
		Event:        security.EventSignOut,
		SubjectType:  "user_id",
		SubjectValue: userID,
		IP:           meta.IP,
		RequestID:    meta.RequestID,
	})
	if err != nil {
		// Local state is already cleared.
		logger.Log.Warn("Identity provider sign-out failed", "user_id", userID, "error", err)
	}
	return nil
}

func (u *authUsecase) reload(ctx context.Context, sess domain.AuthSession) {
	if err := sess.Reload(ctx); err != nil {
		logger.Log.Warn("Failed to reload session profile", "error", err)
	}
}

func roleConflict(stored domain.Role) error {
	if stored == "" {
		return apperror.Conflict("You cannot sign in as a different role with the same account.")
	}
	return apperror.Conflict(fmt.Sprintf(
		"You have already signed up as a %s. You cannot sign in as a different role with the same account.", stored))
}

// identityError maps identity provider failures to user-facing errors.
func identityError(err error) error {
	var perr *identity.ProviderError
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return apperror.New(http.StatusUnauthorized, "Invalid email or password", err)
	case errors.Is(err, identity.ErrEmailNotConfirmed):
		return apperror.New(http.StatusUnauthorized, "Please confirm your email address before signing in", err)
	case errors.Is(err, identity.ErrUnavailable):
		return apperror.New(http.StatusServiceUnavailable, "Authentication service is unavailable. Please try again.", err)
	case errors.Is(err, auth.ErrInvalidToken):
		return apperror.New(http.StatusUnauthorized, "Your session could not be verified. Please sign in again.", err)
	case errors.As(err, &perr):
		return apperror.New(http.StatusBadRequest, perr.Message, err)
	default:
		return apperror.Internal(err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
