package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// getByTokenHashForUpdateTx locks the session row identified by tokenHash for
// the remainder of tx. Of two rotations racing on the same plaintext, the
// loser blocks here until the winner commits and then observes revoked=true.
func getByTokenHashForUpdateTx(ctx context.Context, tx pgx.Tx, tokenHash string) (Session, error) {
	var row Session

	err := tx.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at,
		       user_agent, ip, revoked, created_at, updated_at
		FROM refresh_sessions
		WHERE token_hash = $1
		FOR UPDATE
	`, tokenHash).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&row.ExpiresAt,
		&row.UserAgent,
		&row.IP,
		&row.Revoked,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrUnauthorized
	}
	if err != nil {
		return Session{}, err
	}

	return row, nil
}

func createTx(ctx context.Context, tx pgx.Tx, now time.Time, userID string, userAgent, ip *string, tokenHash string, expiresAt time.Time) (string, error) {
	id := ulid.Make().String()

	_, err := tx.Exec(ctx, `
		INSERT INTO refresh_sessions (
			id, user_id, token_hash, expires_at,
			user_agent, ip, revoked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $7)
	`, id, userID, tokenHash, expiresAt, userAgent, ip, now)
	if err != nil {
		return "", err
	}

	return id, nil
}

func revokeTx(ctx context.Context, tx pgx.Tx, now time.Time, sessionID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = TRUE, updated_at = $2
		WHERE id = $1
	`, sessionID, now)
	return err
}
