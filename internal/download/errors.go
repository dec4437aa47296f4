package download

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is the single failure surfaced to callers. Malformed
	// input, a bad signature and a survey mismatch are indistinguishable
	// from the outside.
	ErrInvalidToken = errors.New("invalid download token")

	// ErrExpired wraps ErrInvalidToken so errors.Is(err, ErrInvalidToken)
	// still holds. The distinction exists for logging only and must not
	// change the response a caller produces.
	ErrExpired = fmt.Errorf("download token expired: %w", ErrInvalidToken)
)
