// Package guard decides whether a role-gated view may render for the
// current session.
package guard

import (
	"net/url"
	"skillsprint/internal/domain"
)

type Action int

const (
	Render Action = iota
	Wait
	RedirectLogin
	RedirectHome
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	}
	return "unknown"
}

// State is the slice of a session the guard looks at. Path is the view
// being requested.
type State struct {
	Loading  bool
	Identity *domain.Identity
	Profile  *domain.Profile
	Path     string
}

type Decision struct {
	Action   Action
	Location string
}

// Decide is pure. A nil required role admits any signed-in user.
func Decide(s State, required *domain.Role) Decision {
	if s.Loading {
		return Decision{Action: Wait}
	}
	if s.Identity == nil {
		return Decision{Action: RedirectLogin, Location: LoginPath(s.Path)}
	}
	if required != nil {
		var role domain.Role
		if s.Profile != nil {
			role = s.Profile.Role
		}
		if role != *required {
			// With no profile loaded the user lands on the recruiter home,
			// unless that is the view being refused.
			if role == "" {
				if *required == domain.RoleRecruiter {
					return Decision{Action: RedirectHome, Location: "/signup"}
				}
				role = domain.RoleRecruiter
			}
			return Decision{Action: RedirectHome, Location: role.HomePath()}
		}
	}
	return Decision{Action: Render}
}

func LoginPath(from string) string {
	if from == "" {
		return "/login"
	}
	return "/login?from=" + url.QueryEscape(from)
}

// Require is a convenience for building the required role argument.
func Require(r domain.Role) *domain.Role {
	return &r
}
