package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fabsGitHub/team-analyzer/internal/security/token"
)

var (
	sessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_refresh_sessions_issued_total",
		Help: "Refresh sessions created at login.",
	})
	sessionsRotated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_refresh_sessions_rotated_total",
		Help: "Successful refresh-session rotations.",
	})
	sessionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_refresh_sessions_rejected_total",
		Help: "Rotation attempts rejected as unauthorized.",
	})
)

// Issued is the result of creating or rotating a refresh session.
// RefreshToken is the plaintext secret; it exists only here and in the
// client's cookie, never in storage.
type Issued struct {
	SessionID    string
	UserID       string
	RefreshToken string
	RefreshExp   time.Time
}

// Service implements the refresh-session lifecycle: issue at login, rotate on
// every use, revoke at logout.
type Service struct {
	cfg   Config
	store Store

	// pool is used to create explicit transactions for rotation safety.
	pool *pgxpool.Pool
}

// NewService constructs a Service. The pool is required for Rotate, which
// must run inside a single transaction.
func NewService(cfg Config, pool *pgxpool.Pool, store Store) *Service {
	return &Service{cfg: cfg, pool: pool, store: store}
}

// IssueSession creates a new session row and returns the plaintext once.
func (s *Service) IssueSession(ctx context.Context, now time.Time, userID string, meta ClientMeta) (Issued, error) {
	plain, hash, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}

	exp := now.Add(s.cfg.RefreshTTL)
	row, err := s.store.Create(ctx, now, userID, meta, hash, exp)
	if err != nil {
		return Issued{}, err
	}

	sessionsIssued.Inc()
	return Issued{
		SessionID:    row.ID,
		UserID:       userID,
		RefreshToken: plain,
		RefreshExp:   exp,
	}, nil
}

// Rotate exchanges a presented refresh plaintext for a fresh session.
//
// The whole step is one transaction: the matching row is locked with
// SELECT ... FOR UPDATE, checked for liveness, revoked, and the replacement
// inserted before commit. Two concurrent rotations of the same plaintext
// therefore cannot both succeed: the second observes the committed revocation
// and fails with ErrUnauthorized.
//
// Unknown, revoked and expired sessions are deliberately indistinguishable.
func (s *Service) Rotate(ctx context.Context, now time.Time, refreshPlain string) (Issued, error) {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		sessionsRejected.Inc()
		return Issued{}, ErrUnauthorized
	}

	hash := token.HashSHA256Hex(refreshPlain)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Issued{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row, err := getByTokenHashForUpdateTx(ctx, tx, hash)
	if err != nil {
		countRejected(err)
		return Issued{}, err
	}
	if err := activeForRotation(row, now); err != nil {
		countRejected(err)
		return Issued{}, err
	}

	newPlain, newHash, err := newOpaqueRefreshToken(s.cfg.RefreshTokenBytes)
	if err != nil {
		return Issued{}, err
	}
	newExp := now.Add(s.cfg.RefreshTTL)

	// Replacement inherits the audit metadata of the session it continues.
	newID, err := createTx(ctx, tx, now, row.UserID, row.UserAgent, row.IP, newHash, newExp)
	if err != nil {
		return Issued{}, err
	}
	if err := revokeTx(ctx, tx, now, row.ID); err != nil {
		return Issued{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Issued{}, err
	}

	sessionsRotated.Inc()
	return Issued{
		SessionID:    newID,
		UserID:       row.UserID,
		RefreshToken: newPlain,
		RefreshExp:   newExp,
	}, nil
}

// Revoke marks the session matching the presented plaintext revoked.
// It is idempotent: unknown and already-dead values are a no-op.
func (s *Service) Revoke(ctx context.Context, now time.Time, refreshPlain string) error {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" {
		return nil
	}
	_, err := s.store.RevokeByTokenHash(ctx, now, token.HashSHA256Hex(refreshPlain))
	return err
}

// RefreshCookie builds the HTTP-only continuation cookie carrying value.
// A zero maxAge clears the cookie (logout).
func (s *Service) RefreshCookie(value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     s.cfg.CookiePath,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// countRejected increments the rejection counter for unauthorized outcomes
// only. Storage failures surface to the caller without touching it.
func countRejected(err error) {
	if errors.Is(err, ErrUnauthorized) {
		sessionsRejected.Inc()
	}
}

// activeForRotation decides whether a locked session row may be rotated.
// No session is ever reactivated: revoked and expired are terminal.
func activeForRotation(row Session, now time.Time) error {
	if row.Revoked {
		return ErrUnauthorized
	}
	if !row.ExpiresAt.After(now) {
		return ErrUnauthorized
	}
	return nil
}
