package surveytoken

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
)

type fakeStore struct {
	tokens    []Token
	createErr error
	failNext  int

	// afterRevoke runs after each RevokeActiveForHolder, letting tests
	// interleave a concurrent issuance into the renew window.
	afterRevoke func(*fakeStore)
}

func (f *fakeStore) Create(_ context.Context, tok Token) error {
	if f.failNext > 0 {
		f.failNext--
		return errors.New("insert failed")
	}
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens = append(f.tokens, tok)
	return nil
}

func (f *fakeStore) FindActiveForHolder(_ context.Context, surveyID, userID string) (Token, error) {
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.SurveyID == surveyID && t.IssuedToUserID != nil && *t.IssuedToUserID == userID && t.Active() {
			return t, nil
		}
	}
	return Token{}, ErrNotFound
}

func (f *fakeStore) RevokeActiveForHolder(_ context.Context, now time.Time, surveyID, userID string) (int, error) {
	var n int
	for i := range f.tokens {
		t := &f.tokens[i]
		if t.SurveyID == surveyID && t.IssuedToUserID != nil && *t.IssuedToUserID == userID && t.Active() {
			t.Revoked = true
			t.RevokedAt = &now
			n++
		}
	}
	if f.afterRevoke != nil {
		f.afterRevoke(f)
	}
	return n, nil
}

func (f *fakeStore) ListOpenForHolder(_ context.Context, userID string) ([]Token, error) {
	var out []Token
	for _, t := range f.tokens {
		if t.IssuedToUserID != nil && *t.IssuedToUserID == userID && t.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestEnsurePersonalToken_CreatesOncePerHolder(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	plain, created, err := m.EnsurePersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, plain)

	// The store holds the digest, never the plaintext.
	require.Len(t, st.tokens, 1)
	require.Equal(t, sectoken.HashSHA256Hex(plain), st.tokens[0].TokenHash)
	require.NotEqual(t, plain, st.tokens[0].TokenHash)

	// Second call finds the live token and does not mint another.
	plain2, created2, err := m.EnsurePersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)
	require.False(t, created2)
	require.Empty(t, plain2)
	require.Len(t, st.tokens, 1)
}

func TestEnsurePersonalToken_DistinctPerSurvey(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()

	_, created, err := m.EnsurePersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)
	require.True(t, created)

	_, created, err = m.EnsurePersonalToken(context.Background(), now, "s2", "u1", "u1@example.com")
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, st.tokens, 2)
}

func TestRenewPersonalToken_RevokesThenIssues(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()

	old, _, err := m.EnsurePersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)

	fresh, err := m.RenewPersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	// Old token is terminally revoked, exactly one token remains active.
	open, err := st.ListOpenForHolder(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, sectoken.HashSHA256Hex(fresh), open[0].TokenHash)
}

func TestRenewPersonalToken_RecoversFromConcurrentIssue(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()
	uid := "u1"

	// A concurrent issuance lands right after the first revoke, so the
	// ensure step finds a token it did not mint. The second pass revokes
	// that interloper as well and succeeds.
	raced := false
	st.afterRevoke = func(f *fakeStore) {
		if raced {
			return
		}
		raced = true
		f.tokens = append(f.tokens, Token{
			ID:             "racer",
			SurveyID:       "s1",
			TokenHash:      sectoken.HashSHA256Hex("concurrent-plaintext"),
			IssuedToUserID: &uid,
			IssuedAt:       now,
		})
	}

	fresh, err := m.RenewPersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, fresh)

	open, err := st.ListOpenForHolder(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	require.Equal(t, sectoken.HashSHA256Hex(fresh), open[0].TokenHash)
}

func TestRenewPersonalToken_PersistentRaceExhaustsRetries(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()
	uid := "u1"

	st.afterRevoke = func(f *fakeStore) {
		f.tokens = append(f.tokens, Token{
			ID:             ulid.Make().String(),
			SurveyID:       "s1",
			TokenHash:      sectoken.HashSHA256Hex(ulid.Make().String()),
			IssuedToUserID: &uid,
			IssuedAt:       now,
		})
	}

	_, err := m.RenewPersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.Error(t, err)
	require.Contains(t, err.Error(), "retries exhausted")
}

func TestRenewPersonalToken_StoreErrorPassesThrough(t *testing.T) {
	st := &fakeStore{createErr: errors.New("insert failed")}
	m := NewManager(st, discardLogger())

	_, err := m.RenewPersonalToken(context.Background(), time.Now().UTC(), "s1", "u1", "u1@example.com")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "retries exhausted")
}

func TestEnsureTokensForMembers_ContinuesPastFailure(t *testing.T) {
	// First insert fails, the two remaining members still get tokens.
	st := &fakeStore{failNext: 1}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()

	members := []Member{
		{UserID: "u1", Email: "u1@example.com"},
		{UserID: "u2", Email: "u2@example.com"},
		{UserID: "u3", Email: "u3@example.com"},
	}
	created, err := m.EnsureTokensForMembers(context.Background(), now, "s1", members)
	require.Error(t, err)
	require.Equal(t, 2, created)
	require.Len(t, st.tokens, 2)
}

func TestEnsureTokensForMembers_SkipsAlreadyIssued(t *testing.T) {
	st := &fakeStore{}
	m := NewManager(st, discardLogger())
	now := time.Now().UTC()

	_, _, err := m.EnsurePersonalToken(context.Background(), now, "s1", "u1", "u1@example.com")
	require.NoError(t, err)

	created, err := m.EnsureTokensForMembers(context.Background(), now, "s1", []Member{
		{UserID: "u1", Email: "u1@example.com"},
		{UserID: "u2", Email: "u2@example.com"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, created)
	require.Len(t, st.tokens, 2)
}

func TestTokenActive(t *testing.T) {
	now := time.Now().UTC()
	require.True(t, Token{}.Active())
	require.False(t, Token{Redeemed: true, RedeemedAt: &now}.Active())
	require.False(t, Token{Revoked: true, RevokedAt: &now}.Active())
}
