package survey

import "errors"

var (
	// ErrNotFound is returned when the survey does not exist.
	ErrNotFound = errors.New("survey not found")

	// ErrNotLeader is returned when an operation reserved for the team's
	// leaders is attempted by anyone else.
	ErrNotLeader = errors.New("requester is not a leader of this team")
)
