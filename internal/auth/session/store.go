package session

import (
	"context"
	"time"
)

// ClientMeta is the audit metadata recorded with every refresh session.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// Session mirrors a refresh_sessions row.
//
// A session is either active (revoked=false and expires_at in the future) or
// permanently dead. Rows are never deleted and never reactivated; rotation
// revokes the old row and inserts exactly one replacement.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UserAgent *string
	IP        *string
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store abstracts persistence for refresh sessions.
//
// Rotation does not go through this interface: it needs a row lock held for
// the duration of one transaction and is implemented against the pool
// directly (see Service.Rotate).
type Store interface {
	// Create inserts a new active session row.
	Create(ctx context.Context, now time.Time, userID string, meta ClientMeta, tokenHash string, expiresAt time.Time) (Session, error)

	// GetByTokenHash loads a session row by token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (Session, error)

	// RevokeByTokenHash marks the matching session revoked if it is still
	// active. It reports whether a row was transitioned; already-dead and
	// unknown hashes are a no-op, making logout idempotent.
	RevokeByTokenHash(ctx context.Context, now time.Time, tokenHash string) (bool, error)
}
