package breeze_errors

import "errors"

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidInput     = errors.New("invalid input")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNoDefaultGroup   = errors.New("default group not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrAlreadyResponded = errors.New("response already sent")
)
