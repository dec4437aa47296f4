package identity

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
)

type fakeStore struct {
	users map[string]*User // by id
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*User{}}
}

func (f *fakeStore) Create(_ context.Context, u User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	cp := u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id string) (User, error) {
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) ByEmail(_ context.Context, email string) (User, error) {
	norm := NormalizeEmail(email)
	for _, u := range f.users {
		if u.Email == norm {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) Enable(_ context.Context, now time.Time, id string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Enabled = true
	u.UpdatedAt = now
	return nil
}

func (f *fakeStore) SetRoles(_ context.Context, now time.Time, id string, roles []string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Roles = roles
	u.UpdatedAt = now
	return nil
}

func (f *fakeStore) SetResetToken(_ context.Context, now time.Time, id, tokenHash string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenCreatedAt = &now
	return nil
}

func (f *fakeStore) ByResetTokenHash(_ context.Context, tokenHash string) (User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash {
			return *u, nil
		}
	}
	return User{}, ErrNotFound
}

func (f *fakeStore) UpdatePassword(_ context.Context, now time.Time, id, passwordHash string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenCreatedAt = nil
	u.UpdatedAt = now
	return nil
}

func newTestService(st Store) *Service {
	verifier := NewVerifyTokenIssuer("teamanalyzer", verifySecret, time.Hour)
	return NewService(st, verifier, 30*time.Minute, slog.New(slog.DiscardHandler))
}

func TestRegisterVerifyLogin(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	u, verify, err := svc.Register(ctx, now, "New.User@Example.COM", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", u.Email)
	require.False(t, u.Enabled)
	require.Equal(t, []string{RoleUser}, u.Roles)
	require.NotContains(t, u.PasswordHash, "correct-horse")

	// Login is refused until the address is verified.
	_, err = svc.Authenticate(ctx, "new.user@example.com", "correct-horse")
	require.ErrorIs(t, err, ErrDisabled)

	require.NoError(t, svc.VerifyEmail(ctx, now, verify))

	got, err := svc.Authenticate(ctx, "new.user@example.com", "correct-horse")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Now().UTC()

	_, _, err := svc.Register(ctx, now, "dup@example.com", "correct-horse")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, now, "DUP@example.com", "battery-staple")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate_CollapsesFailures(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Now().UTC()

	_, verify, err := svc.Register(ctx, now, "a@example.com", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, now, verify))

	// Unknown email and wrong password are the same answer.
	_, err = svc.Authenticate(ctx, "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "a@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordReset_FullFlow(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	u, verify, err := svc.Register(ctx, now, "r@example.com", "original-pass")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, now, verify))

	plain, err := svc.StartPasswordReset(ctx, now, "r@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, plain)

	// Only the digest reaches the store.
	stored, _ := st.ByID(ctx, u.ID)
	require.NotNil(t, stored.ResetTokenHash)
	require.Equal(t, sectoken.HashSHA256Hex(plain), *stored.ResetTokenHash)

	require.NoError(t, svc.CompletePasswordReset(ctx, now.Add(5*time.Minute), plain, "fresh-password"))

	_, err = svc.Authenticate(ctx, "r@example.com", "original-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "r@example.com", "fresh-password")
	require.NoError(t, err)

	// The secret is single-use; the digest was cleared.
	err = svc.CompletePasswordReset(ctx, now.Add(6*time.Minute), plain, "again")
	require.ErrorIs(t, err, ErrResetInvalid)
}

func TestPasswordReset_TTLBoundIsExclusive(t *testing.T) {
	st := newFakeStore()
	svc := newTestService(st)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, verify, err := svc.Register(ctx, now, "t@example.com", "original-pass")
	require.NoError(t, err)
	require.NoError(t, svc.VerifyEmail(ctx, now, verify))

	plain, err := svc.StartPasswordReset(ctx, now, "t@example.com")
	require.NoError(t, err)

	err = svc.CompletePasswordReset(ctx, now.Add(30*time.Minute), plain, "fresh-password")
	require.ErrorIs(t, err, ErrResetInvalid)
}

func TestStartPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc := newTestService(newFakeStore())
	plain, err := svc.StartPasswordReset(context.Background(), time.Now().UTC(), "ghost@example.com")
	require.NoError(t, err)
	require.Empty(t, plain)
}

func TestHasRole(t *testing.T) {
	u := User{Roles: []string{RoleUser, RoleLeader}}
	require.True(t, u.HasRole(RoleLeader))
	require.False(t, u.HasRole(RoleAdmin))
}
