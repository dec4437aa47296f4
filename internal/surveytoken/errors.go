package surveytoken

import "errors"

var (
	// ErrNotFound is returned when no token matches the presented hash.
	ErrNotFound = errors.New("survey token not found")

	// ErrGone is returned when the token exists but is terminally redeemed
	// or revoked. Surfaced distinctly: "you already answered" is legitimate
	// feedback, not an attack signal.
	ErrGone = errors.New("survey token already used")
)
