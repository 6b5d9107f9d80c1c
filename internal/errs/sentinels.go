// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication (bad credentials or token).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated user does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
