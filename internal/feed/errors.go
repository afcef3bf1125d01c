package feed

import "errors"

var (
	// ErrNotFound is returned when a post or comment id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the ownership check fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is returned for empty content or unknown enum values.
	ErrValidation = errors.New("validation failed")
)
