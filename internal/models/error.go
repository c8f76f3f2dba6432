package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login governor / account state errors
	ErrAccountLocked    = errors.New("account is temporarily locked")
	ErrChallengeFailed  = errors.New("challenge answer incorrect")
	ErrStoreUnavailable = errors.New("attempt store unavailable")
)
