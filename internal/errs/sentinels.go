// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials indicates a failed login. Unknown username and
	// wrong password collapse into this one error to prevent enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates a refresh token that failed verification or
	// whose subject no longer exists.
	ErrInvalidToken = errors.New("invalid token")

	// ErrForbidden indicates the acting principal may not mutate the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")
)
