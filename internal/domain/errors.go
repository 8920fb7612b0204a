package domain

import "errors"

// Common domain errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrRoleConflict = errors.New("profile already exists with a different role")
)
