package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fabsGitHub/team-analyzer/internal/security/password"
	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
)

// DefaultResetTTL bounds how long a password-reset secret stays usable.
const DefaultResetTTL = 30 * time.Minute

var (
	usersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_users_registered_total",
		Help: "Users created through registration.",
	})
	loginsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "teamanalyzer_logins_rejected_total",
		Help: "Login attempts rejected for any reason.",
	})
)

// Service implements registration, verification, login checks and password
// reset over a Store.
type Service struct {
	store    Store
	verifier *VerifyTokenIssuer
	resetTTL time.Duration
	log      *slog.Logger
}

// NewService constructs a Service. A zero resetTTL selects DefaultResetTTL.
func NewService(store Store, verifier *VerifyTokenIssuer, resetTTL time.Duration, log *slog.Logger) *Service {
	if resetTTL <= 0 {
		resetTTL = DefaultResetTTL
	}
	return &Service{store: store, verifier: verifier, resetTTL: resetTTL, log: log}
}

// Register creates a disabled user and returns it together with the
// email-verify token the caller should deliver. The account stays unable to
// log in until VerifyEmail runs.
func (s *Service) Register(ctx context.Context, now time.Time, email, plainPassword string) (User, string, error) {
	hash, err := password.Hash(plainPassword, password.DefaultParams())
	if err != nil {
		return User{}, "", err
	}
	u := User{
		ID:           ulid.Make().String(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		Enabled:      false,
		Roles:        []string{RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return User{}, "", err
	}
	verify, err := s.verifier.Issue(u.ID, u.Email, now)
	if err != nil {
		return User{}, "", fmt.Errorf("issue verify token: %w", err)
	}
	usersRegistered.Inc()
	s.log.Info("user registered", "user_id", u.ID)
	return u, verify, nil
}

// VerifyEmail redeems an email-verify token, enabling the account it names.
func (s *Service) VerifyEmail(ctx context.Context, now time.Time, token string) error {
	userID, err := s.verifier.Verify(token, now)
	if err != nil {
		return err
	}
	if err := s.store.Enable(ctx, now, userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrVerifyTokenInvalid
		}
		return err
	}
	s.log.Info("user verified", "user_id", userID)
	return nil
}

// Authenticate checks credentials and returns the user on success. Unknown
// email and wrong password both yield ErrInvalidCredentials; a correct
// password on an unverified account yields ErrDisabled.
func (s *Service) Authenticate(ctx context.Context, email, plainPassword string) (User, error) {
	u, err := s.store.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			loginsRejected.Inc()
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	ok, err := password.Verify(u.PasswordHash, plainPassword)
	if err != nil || !ok {
		loginsRejected.Inc()
		return User{}, ErrInvalidCredentials
	}
	if !u.Enabled {
		loginsRejected.Inc()
		return User{}, ErrDisabled
	}
	return u, nil
}

// StartPasswordReset issues a reset secret for the account behind email and
// returns the plaintext for delivery. Only the digest is stored. An unknown
// email returns empty plaintext and no error so that callers cannot test
// which addresses exist.
func (s *Service) StartPasswordReset(ctx context.Context, now time.Time, email string) (string, error) {
	u, err := s.store.ByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	plaintext, err := sectoken.NewOpaqueToken(32)
	if err != nil {
		return "", err
	}
	if err := s.store.SetResetToken(ctx, now, u.ID, sectoken.HashSHA256Hex(plaintext)); err != nil {
		return "", err
	}
	s.log.Info("password reset started", "user_id", u.ID)
	return plaintext, nil
}

// CompletePasswordReset redeems a reset secret and sets the new password.
// Unknown and stale secrets both yield ErrResetInvalid.
func (s *Service) CompletePasswordReset(ctx context.Context, now time.Time, plaintext, newPassword string) error {
	u, err := s.store.ByResetTokenHash(ctx, sectoken.HashSHA256Hex(plaintext))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrResetInvalid
		}
		return err
	}
	if u.ResetTokenCreatedAt == nil || now.Sub(*u.ResetTokenCreatedAt) >= s.resetTTL {
		return ErrResetInvalid
	}
	hash, err := password.Hash(newPassword, password.DefaultParams())
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, now, u.ID, hash); err != nil {
		return err
	}
	s.log.Info("password reset completed", "user_id", u.ID)
	return nil
}
