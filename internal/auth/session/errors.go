package session

import "errors"

var (
	// ErrTokenMalformed is returned when an access token is structurally unparsable.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenInvalid is returned when an access token signature does not verify.
	ErrTokenInvalid = errors.New("invalid token signature")

	// ErrTokenExpired is returned when an access token is past its expiry.
	// Expiry is an exclusive upper bound: a token checked at exactly its
	// expiry instant is already expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrUnauthorized is the collapsed failure for refresh-session operations:
	// unknown, revoked and expired sessions are indistinguishable to callers.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConfig is returned for invalid configuration. Startup-only; an
	// undersized signing secret must fail construction, never silently
	// weaken signing.
	ErrConfig = errors.New("invalid session config")
)
