// Package auth composes identity checks with token issuance. It is the
// place where "log this user in" turns into an access token plus a refresh
// session, without either side knowing about the other.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fabsGitHub/team-analyzer/internal/auth/session"
	"github.com/fabsGitHub/team-analyzer/internal/clock"
	"github.com/fabsGitHub/team-analyzer/internal/identity"
)

// Tokens is the credential pair handed to a client after login or refresh.
type Tokens struct {
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Flows wires the identity service to the token machinery. Each flow reads
// the clock once so both tokens of a pair share one issuance instant.
type Flows struct {
	users    *identity.Service
	store    identity.Store
	access   session.AccessTokenManager
	sessions *session.Service
	clock    clock.Clock
	log      *slog.Logger
}

// NewFlows constructs Flows.
func NewFlows(users *identity.Service, store identity.Store, access session.AccessTokenManager, sessions *session.Service, clk clock.Clock, log *slog.Logger) *Flows {
	return &Flows{users: users, store: store, access: access, sessions: sessions, clock: clk, log: log}
}

// Login checks credentials and, on success, issues an access token and a
// fresh refresh session. Credential failures pass through unchanged
// (identity.ErrInvalidCredentials, identity.ErrDisabled).
func (f *Flows) Login(ctx context.Context, email, password string, meta session.ClientMeta) (Tokens, error) {
	u, err := f.users.Authenticate(ctx, email, password)
	if err != nil {
		return Tokens{}, err
	}

	now := f.clock.Now()
	access, accessExp, err := f.access.Issue(u.ID, u.Email, u.Roles, now)
	if err != nil {
		return Tokens{}, err
	}
	issued, err := f.sessions.IssueSession(ctx, now, u.ID, meta)
	if err != nil {
		return Tokens{}, err
	}

	f.log.Info("login", "user_id", u.ID, "session_id", issued.SessionID)
	return Tokens{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: issued.RefreshToken,
		RefreshExp:   issued.RefreshExp,
	}, nil
}

// Refresh rotates the presented refresh token and returns a new credential
// pair. Any rotation failure surfaces as session.ErrUnauthorized.
func (f *Flows) Refresh(ctx context.Context, refreshPlain string) (Tokens, error) {
	now := f.clock.Now()
	issued, err := f.sessions.Rotate(ctx, now, refreshPlain)
	if err != nil {
		return Tokens{}, err
	}

	u, err := f.store.ByID(ctx, issued.UserID)
	if err != nil {
		// The session row exists but its user is gone. Treat like any
		// other unusable token.
		if errors.Is(err, identity.ErrNotFound) {
			return Tokens{}, session.ErrUnauthorized
		}
		return Tokens{}, err
	}

	access, accessExp, err := f.access.Issue(u.ID, u.Email, u.Roles, now)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: issued.RefreshToken,
		RefreshExp:   issued.RefreshExp,
	}, nil
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op;
// logging out twice succeeds.
func (f *Flows) Logout(ctx context.Context, refreshPlain string) error {
	return f.sessions.Revoke(ctx, f.clock.Now(), refreshPlain)
}
