package surveytoken

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
)

var (
	tokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_survey_tokens_issued_total",
		Help: "Survey tokens created.",
	})
	tokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_survey_tokens_revoked_total",
		Help: "Survey tokens terminally revoked.",
	})
)

// Member identifies a team member a token should be issued to.
type Member struct {
	UserID string
	Email  string
}

// Manager issues and administers personal survey tokens. Submission-time
// consumption lives in AcquireForSubmissionTx and ConsumeTx because it must
// share the transaction that records the response.
type Manager struct {
	store Store
	log   *slog.Logger
}

// NewManager constructs a Manager.
func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{store: store, log: log}
}

// EnsurePersonalToken returns a live plaintext token for (survey, holder),
// creating one when none exists. The returned bool reports whether a new
// token was created. Repeated calls are idempotent in effect: an existing
// active token means no new plaintext can be produced, so created is false
// and the plaintext is empty.
//
// A concurrent duplicate insert is benign. Both rows are valid single-use
// credentials for the same holder; the loser of the race simply issued one
// more token than strictly needed.
func (m *Manager) EnsurePersonalToken(ctx context.Context, now time.Time, surveyID, userID, email string) (plaintext string, created bool, err error) {
	_, err = m.store.FindActiveForHolder(ctx, surveyID, userID)
	if err == nil {
		return "", false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", false, err
	}
	plaintext, err = m.issue(ctx, now, surveyID, userID, email)
	if err != nil {
		return "", false, err
	}
	return plaintext, true, nil
}

// RenewPersonalToken revokes the holder's active tokens and issues a fresh
// one via EnsurePersonalToken, returning the new plaintext. When a concurrent
// issuance lands between revoke and create, EnsurePersonalToken finds that
// foreign token and reports created == false: one more revoke-and-ensure pass
// covers that window.
func (m *Manager) RenewPersonalToken(ctx context.Context, now time.Time, surveyID, userID, email string) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		n, err := m.store.RevokeActiveForHolder(ctx, now, surveyID, userID)
		if err != nil {
			return "", err
		}
		if n > 0 {
			tokensRevoked.Add(float64(n))
		}
		plaintext, created, err := m.EnsurePersonalToken(ctx, now, surveyID, userID, email)
		if err != nil {
			return "", err
		}
		if created {
			return plaintext, nil
		}
		m.log.Warn("survey token renew lost race",
			"survey_id", surveyID, "user_id", userID)
	}
	return "", fmt.Errorf("renew survey token for survey %s: retries exhausted", surveyID)
}

// EnsureTokensForMembers issues a token to every member that lacks one. A
// failure for one member is logged and does not stop the rest; the number of
// newly created tokens is returned together with the last error seen.
func (m *Manager) EnsureTokensForMembers(ctx context.Context, now time.Time, surveyID string, members []Member) (int, error) {
	var created int
	var lastErr error
	for _, mem := range members {
		_, ok, err := m.EnsurePersonalToken(ctx, now, surveyID, mem.UserID, mem.Email)
		if err != nil {
			lastErr = err
			m.log.Error("survey token issuance failed",
				"survey_id", surveyID, "user_id", mem.UserID, "err", err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, lastErr
}

// ListOpenForHolder returns the holder's unredeemed, unrevoked tokens.
func (m *Manager) ListOpenForHolder(ctx context.Context, userID string) ([]Token, error) {
	return m.store.ListOpenForHolder(ctx, userID)
}

func (m *Manager) issue(ctx context.Context, now time.Time, surveyID, userID, email string) (string, error) {
	plaintext := uuid.NewString()
	tok := Token{
		ID:             ulid.Make().String(),
		SurveyID:       surveyID,
		TokenHash:      sectoken.HashSHA256Hex(plaintext),
		IssuedToUserID: &userID,
		IssuedToEmail:  &email,
		IssuedAt:       now,
	}
	if err := m.store.Create(ctx, tok); err != nil {
		return "", err
	}
	tokensIssued.Inc()
	return plaintext, nil
}
