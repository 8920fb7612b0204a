package guard_test

import (
	"testing"

	"skillsprint/internal/domain"
	"skillsprint/internal/guard"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	ana := &domain.Identity{UID: "u1"}
	student := &domain.Profile{ID: "u1", Role: domain.RoleStudent}
	recruiter := &domain.Profile{ID: "u2", Role: domain.RoleRecruiter}

	tests := []struct {
		name     string
		state    guard.State
		required *domain.Role
		want     guard.Decision
	}{
		{
			name:     "Should wait while loading even without identity",
			state:    guard.State{Loading: true, Path: "/student"},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.Wait},
		},
		{
			name:     "Should wait while loading with a mismatched role",
			state:    guard.State{Loading: true, Identity: ana, Profile: recruiter},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.Wait},
		},
		{
			name:     "Should redirect to login carrying the requested path",
			state:    guard.State{Path: "/student/coach"},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.RedirectLogin, Location: "/login?from=%2Fstudent%2Fcoach"},
		},
		{
			name:     "Should redirect to login without role requirement",
			state:    guard.State{Path: "/profile/image"},
			required: nil,
			want:     guard.Decision{Action: guard.RedirectLogin, Location: "/login?from=%2Fprofile%2Fimage"},
		},
		{
			name:     "Should render for any signed-in user when no role is required",
			state:    guard.State{Identity: ana, Profile: recruiter},
			required: nil,
			want:     guard.Decision{Action: guard.Render},
		},
		{
			name:     "Should render without profile when no role is required",
			state:    guard.State{Identity: ana},
			required: nil,
			want:     guard.Decision{Action: guard.Render},
		},
		{
			name:     "Should render a student view for a student",
			state:    guard.State{Identity: ana, Profile: student},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.Render},
		},
		{
			name:     "Should send a recruiter home from a student view",
			state:    guard.State{Identity: ana, Profile: recruiter},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.RedirectHome, Location: "/recruiter"},
		},
		{
			name:     "Should send a student home from a recruiter view",
			state:    guard.State{Identity: ana, Profile: student},
			required: guard.Require(domain.RoleRecruiter),
			want:     guard.Decision{Action: guard.RedirectHome, Location: "/student"},
		},
		{
			name:     "Should send a user without profile to the recruiter home",
			state:    guard.State{Identity: ana},
			required: guard.Require(domain.RoleStudent),
			want:     guard.Decision{Action: guard.RedirectHome, Location: "/recruiter"},
		},
		{
			name:     "Should send a user without profile to sign-up from a recruiter view",
			state:    guard.State{Identity: ana},
			required: guard.Require(domain.RoleRecruiter),
			want:     guard.Decision{Action: guard.RedirectHome, Location: "/signup"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.Decide(tt.state, tt.required))
		})
	}
}

func TestLoginPath(t *testing.T) {
	assert.Equal(t, "/login", guard.LoginPath(""))
	assert.Equal(t, "/login?from=%2Frecruiter", guard.LoginPath("/recruiter"))
}
