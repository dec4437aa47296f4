package identity

import "errors"

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registration hits an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials collapses unknown email, wrong password and a
	// few other login failures into one answer.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDisabled is returned when the account exists but has not been
	// enabled through email verification yet.
	ErrDisabled = errors.New("account not enabled")

	// ErrVerifyTokenInvalid is returned for unusable email-verify tokens.
	ErrVerifyTokenInvalid = errors.New("invalid verification token")

	// ErrResetInvalid is returned when a password-reset token is unknown
	// or older than the reset TTL.
	ErrResetInvalid = errors.New("invalid or expired reset token")
)
