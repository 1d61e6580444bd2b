package store

import "errors"

var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrDuplicateID        = errors.New("an account with this id already exists")
	ErrInvalidIDFormat    = errors.New("rescuer id must match the name-r# format")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCaseNotFound       = errors.New("case not found")
	ErrRevisionConflict   = errors.New("case was modified concurrently")
)
