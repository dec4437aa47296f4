package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore implements Store over refresh_sessions.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create inserts a new active session row and returns it.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID string, meta ClientMeta, tokenHash string, expiresAt time.Time) (Session, error) {
	id := ulid.Make().String()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_sessions (
			id, user_id, token_hash, expires_at,
			user_agent, ip, revoked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $7)
	`, id, userID, tokenHash, expiresAt, nullIfEmpty(meta.UserAgent), nullIfEmpty(meta.IP), now)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		UserAgent: nullIfEmpty(meta.UserAgent),
		IP:        nullIfEmpty(meta.IP),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByTokenHash loads a session row by its token hash.
func (s *PostgresStore) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	var row Session

	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at,
		       user_agent, ip, revoked, created_at, updated_at
		FROM refresh_sessions
		WHERE token_hash = $1
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

// RevokeByTokenHash revokes the matching session if still active.
func (s *PostgresStore) RevokeByTokenHash(ctx context.Context, now time.Time, tokenHash string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE refresh_sessions
		SET revoked = TRUE, updated_at = $2
		WHERE token_hash = $1 AND revoked = FALSE
	`, tokenHash, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
