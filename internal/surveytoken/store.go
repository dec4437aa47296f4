package surveytoken

import (
	"context"
	"time"
)

// Token mirrors a survey_tokens row.
type Token struct {
	ID             string
	SurveyID       string
	TokenHash      string
	IssuedToUserID *string
	IssuedToEmail  *string
	IssuedAt       time.Time
	Redeemed       bool
	RedeemedAt     *time.Time
	Revoked        bool
	RevokedAt      *time.Time
}

// Active reports whether the token can still be redeemed.
func (t Token) Active() bool {
	return !t.Redeemed && !t.Revoked
}

// Store is the persistence boundary for survey tokens.
//
// Submission-path operations (acquire with row lock, consume) are not part
// of this interface: they live on the transaction and are provided as
// tx-scoped functions.
type Store interface {
	// Create inserts a new active token row.
	Create(ctx context.Context, tok Token) error

	// FindActiveForHolder returns the active (not redeemed, not revoked)
	// token of a holder for a survey, or ErrNotFound.
	FindActiveForHolder(ctx context.Context, surveyID, userID string) (Token, error)

	// RevokeActiveForHolder terminally revokes all active tokens of a holder
	// for a survey and returns how many rows transitioned.
	RevokeActiveForHolder(ctx context.Context, now time.Time, surveyID, userID string) (int, error)

	// ListOpenForHolder returns all active tokens of a holder, newest first.
	ListOpenForHolder(ctx context.Context, userID string) ([]Token, error)
}
