package surveytoken

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists survey tokens in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const tokenColumns = `id, survey_id, token_hash, issued_to_user_id, issued_to_email,
	issued_at, redeemed, redeemed_at, revoked, revoked_at`

func scanToken(row pgx.Row) (Token, error) {
	var t Token
	err := row.Scan(
		&t.ID,
		&t.SurveyID,
		&t.TokenHash,
		&t.IssuedToUserID,
		&t.IssuedToEmail,
		&t.IssuedAt,
		&t.Redeemed,
		&t.RedeemedAt,
		&t.Revoked,
		&t.RevokedAt,
	)
	return t, err
}

// Create inserts a new token row.
func (s *PostgresStore) Create(ctx context.Context, tok Token) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO survey_tokens (
			id, survey_id, token_hash, issued_to_user_id, issued_to_email,
			issued_at, redeemed, redeemed_at, revoked, revoked_at
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, FALSE, NULL)
	`, tok.ID, tok.SurveyID, tok.TokenHash, tok.IssuedToUserID, tok.IssuedToEmail, tok.IssuedAt)
	return err
}

// FindActiveForHolder returns the active token of (survey, holder).
func (s *PostgresStore) FindActiveForHolder(ctx context.Context, surveyID, userID string) (Token, error) {
	t, err := scanToken(s.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+`
		FROM survey_tokens
		WHERE survey_id = $1
		  AND issued_to_user_id = $2
		  AND redeemed = FALSE
		  AND revoked = FALSE
		ORDER BY issued_at DESC
		LIMIT 1
	`, surveyID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Token{}, ErrNotFound
	}
	if err != nil {
		return Token{}, err
	}
	return t, nil
}

// RevokeActiveForHolder terminally revokes all active tokens of (survey, holder).
func (s *PostgresStore) RevokeActiveForHolder(ctx context.Context, now time.Time, surveyID, userID string) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE survey_tokens
		SET revoked = TRUE, revoked_at = $3
		WHERE survey_id = $1
		  AND issued_to_user_id = $2
		  AND redeemed = FALSE
		  AND revoked = FALSE
	`, surveyID, userID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// ListOpenForHolder returns the holder's active tokens, newest first.
func (s *PostgresStore) ListOpenForHolder(ctx context.Context, userID string) ([]Token, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+tokenColumns+`
		FROM survey_tokens
		WHERE issued_to_user_id = $1
		  AND redeemed = FALSE
		  AND revoked = FALSE
		ORDER BY issued_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
