package identity

import (
	"context"
	"slices"
	"time"
)

// Role names mirror the values stored in users.roles.
const (
	RoleUser   = "ROLE_USER"
	RoleLeader = "ROLE_LEADER"
	RoleAdmin  = "ROLE_ADMIN"
)

// User mirrors a users row. PasswordHash is an argon2id PHC string and never
// leaves the package boundary in responses.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Enabled      bool
	Roles        []string

	ResetTokenHash      *string
	ResetTokenCreatedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user carries the given role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Store is the user persistence boundary.
type Store interface {
	// Create inserts a new user row, reporting ErrEmailTaken on a
	// normalized-email conflict.
	Create(ctx context.Context, u User) error

	// ByID returns a user by primary key, or ErrNotFound.
	ByID(ctx context.Context, id string) (User, error)

	// ByEmail looks up by normalized email, or ErrNotFound.
	ByEmail(ctx context.Context, email string) (User, error)

	// Enable flips the account to enabled. Enabling twice is harmless.
	Enable(ctx context.Context, now time.Time, id string) error

	// SetRoles replaces the user's role set.
	SetRoles(ctx context.Context, now time.Time, id string, roles []string) error

	// SetResetToken records the digest of a freshly issued reset secret,
	// replacing any earlier one.
	SetResetToken(ctx context.Context, now time.Time, id, tokenHash string) error

	// ByResetTokenHash finds the user holding the given reset digest, or
	// ErrNotFound.
	ByResetTokenHash(ctx context.Context, tokenHash string) (User, error)

	// UpdatePassword stores a new password hash and clears any pending
	// reset token.
	UpdatePassword(ctx context.Context, now time.Time, id, passwordHash string) error
}
