package engine

import "errors"

// Sentinel errors returned by engine operations. Callers branch with
// errors.Is; the HTTP layer maps them to status and business codes.
var (
	// ErrInvalidArgument means the input was malformed (unknown action
	// kind, multiplier below one). Raised before any mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized means the caller lacks a valid user identity.
	// Must not be retried automatically.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable means the persistence layer or the stats dependency
	// failed transiently. Every write path is idempotent per key, so the
	// caller may retry the whole event.
	ErrUnavailable = errors.New("dependency unavailable")
)
