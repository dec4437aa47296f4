package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fabsGitHub/team-analyzer/internal/auth/session"
	"github.com/fabsGitHub/team-analyzer/internal/clock"
	"github.com/fabsGitHub/team-analyzer/internal/identity"
)

type memSessionStore struct {
	rows map[string]session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{rows: map[string]session.Session{}}
}

func (m *memSessionStore) Create(_ context.Context, now time.Time, userID string, _ session.ClientMeta, tokenHash string, expiresAt time.Time) (session.Session, error) {
	row := session.Session{
		ID:        tokenHash[:8],
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.rows[tokenHash] = row
	return row, nil
}

func (m *memSessionStore) GetByTokenHash(_ context.Context, tokenHash string) (session.Session, error) {
	row, ok := m.rows[tokenHash]
	if !ok {
		return session.Session{}, session.ErrUnauthorized
	}
	return row, nil
}

func (m *memSessionStore) RevokeByTokenHash(_ context.Context, now time.Time, tokenHash string) (bool, error) {
	row, ok := m.rows[tokenHash]
	if !ok || row.Revoked {
		return false, nil
	}
	row.Revoked = true
	row.UpdatedAt = now
	m.rows[tokenHash] = row
	return true, nil
}

type memUserStore struct {
	users map[string]identity.User
}

func (m *memUserStore) Create(_ context.Context, u identity.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *memUserStore) ByID(_ context.Context, id string) (identity.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return identity.User{}, identity.ErrNotFound
}

func (m *memUserStore) ByEmail(_ context.Context, email string) (identity.User, error) {
	for _, u := range m.users {
		if u.Email == identity.NormalizeEmail(email) {
			return u, nil
		}
	}
	return identity.User{}, identity.ErrNotFound
}

func (m *memUserStore) Enable(_ context.Context, now time.Time, id string) error {
	u, ok := m.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	u.Enabled = true
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}

func (m *memUserStore) SetRoles(_ context.Context, now time.Time, id string, roles []string) error {
	u, ok := m.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	u.Roles = roles
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}

func (m *memUserStore) SetResetToken(_ context.Context, now time.Time, id, tokenHash string) error {
	u, ok := m.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenCreatedAt = &now
	m.users[id] = u
	return nil
}

func (m *memUserStore) ByResetTokenHash(_ context.Context, tokenHash string) (identity.User, error) {
	for _, u := range m.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash {
			return u, nil
		}
	}
	return identity.User{}, identity.ErrNotFound
}

func (m *memUserStore) UpdatePassword(_ context.Context, now time.Time, id, passwordHash string) error {
	u, ok := m.users[id]
	if !ok {
		return identity.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenCreatedAt = nil
	u.UpdatedAt = now
	m.users[id] = u
	return nil
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestFlows(t *testing.T) (*Flows, *memUserStore, *identity.Service) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	userStore := &memUserStore{users: map[string]identity.User{}}
	verifier := identity.NewVerifyTokenIssuer("teamanalyzer", []byte("0123456789abcdef0123456789abcdef"), time.Hour)
	users := identity.NewService(userStore, verifier, 30*time.Minute, log)

	cfg := session.DefaultConfig()
	cfg.AccessSecret = []byte("0123456789abcdef0123456789abcdef")
	access, err := session.NewAccessTokenManager(cfg)
	require.NoError(t, err)
	sessions := session.NewService(cfg, nil, newMemSessionStore())

	return NewFlows(users, userStore, access, sessions, clock.Fixed{T: testNow}, log), userStore, users
}

func TestLogin_IssuesBothTokens(t *testing.T) {
	flows, _, users := newTestFlows(t)
	ctx := context.Background()

	_, verify, err := users.Register(ctx, testNow, "a@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, users.VerifyEmail(ctx, testNow, verify))

	toks, err := flows.Login(ctx, "a@example.com", "correct-horse", session.ClientMeta{UserAgent: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, toks.AccessToken)
	require.NotEmpty(t, toks.RefreshToken)
	require.True(t, toks.AccessExp.After(testNow))
	require.True(t, toks.RefreshExp.After(toks.AccessExp), "refresh must outlive access")
}

func TestLogin_PassesCredentialErrorsThrough(t *testing.T) {
	flows, _, users := newTestFlows(t)
	ctx := context.Background()

	_, _, err := users.Register(ctx, testNow, "b@example.com", "correct-horse")
	require.NoError(t, err)

	// Not yet verified.
	_, err = flows.Login(ctx, "b@example.com", "correct-horse", session.ClientMeta{})
	require.ErrorIs(t, err, identity.ErrDisabled)

	_, err = flows.Login(ctx, "ghost@example.com", "whatever", session.ClientMeta{})
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestLogout_IsIdempotent(t *testing.T) {
	flows, _, users := newTestFlows(t)
	ctx := context.Background()

	_, verify, err := users.Register(ctx, testNow, "c@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, users.VerifyEmail(ctx, testNow, verify))

	toks, err := flows.Login(ctx, "c@example.com", "correct-horse", session.ClientMeta{})
	require.NoError(t, err)

	require.NoError(t, flows.Logout(ctx, toks.RefreshToken))
	require.NoError(t, flows.Logout(ctx, toks.RefreshToken))
	require.NoError(t, flows.Logout(ctx, "never-issued"))
}
