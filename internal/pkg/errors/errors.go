package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAlreadyExists is returned when a unique relationship is created twice.
	ErrAlreadyExists = errors.New("already exists")
	// ErrForbidden covers self-targeted social actions.
	ErrForbidden = errors.New("forbidden")
)
