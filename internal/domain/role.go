package domain

import "fmt"

// Role is the closed set of account types. A profile's role never changes
// after creation.
type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleRecruiter:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRecruiter
}

// HomePath is the role's dashboard view.
func (r Role) HomePath() string {
	if r == RoleStudent {
		return "/student"
	}
	return "/recruiter"
}

// SignInPath is where a user of this role lands right after signing in.
// Students start on the career path quiz.
func (r Role) SignInPath() string {
	if r == RoleStudent {
		return "/student/career-path"
	}
	return "/recruiter"
}
