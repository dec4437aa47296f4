package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	minHS256SecretBytes = 32
	minHS512SecretBytes = 64
)

// AccessClaims is the identity envelope carried by an access token.
// It is ephemeral: produced and consumed only in memory, never persisted.
type AccessClaims struct {
	UserID    string
	Email     string
	Roles     []string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AccessTokenManager issues and verifies short-lived access tokens.
//
// Verify is a pure function of the token and the given instant; it never
// touches storage.
type AccessTokenManager interface {
	Issue(userID, email string, roles []string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

type accessTokenClaims struct {
	UserID string   `json:"uid"`
	Roles  []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type jwtAccessManager struct {
	issuer string
	ttl    time.Duration
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewAccessTokenManager builds an AccessTokenManager signing with HMAC.
//
// The algorithm is selected once from the secret length: 64 bytes or more
// selects HS512, 32 bytes or more HS256. A shorter secret is a fatal
// misconfiguration and fails construction with ErrConfig.
func NewAccessTokenManager(cfg Config) (AccessTokenManager, error) {
	var method *jwt.SigningMethodHMAC
	switch {
	case len(cfg.AccessSecret) >= minHS512SecretBytes:
		method = jwt.SigningMethodHS512
	case len(cfg.AccessSecret) >= minHS256SecretBytes:
		method = jwt.SigningMethodHS256
	default:
		return nil, ErrConfig
	}
	if cfg.Issuer == "" || cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}

	return &jwtAccessManager{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: cfg.AccessSecret,
		method: method,
	}, nil
}

func (m *jwtAccessManager) Issue(userID, email string, roles []string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	claims := accessTokenClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *jwtAccessManager) Verify(tokenStr string, now time.Time) (AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	var claims accessTokenClaims
	tok, err := parser.ParseWithClaims(tokenStr, &claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return AccessClaims{}, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return AccessClaims{}, ErrTokenExpired
		default:
			return AccessClaims{}, ErrTokenInvalid
		}
	}
	if !tok.Valid || claims.ExpiresAt == nil {
		return AccessClaims{}, ErrTokenInvalid
	}

	// Exclusive upper bound: exactly-at-expiry is already expired.
	if !now.Before(claims.ExpiresAt.Time) {
		return AccessClaims{}, ErrTokenExpired
	}

	out := AccessClaims{
		UserID:    claims.UserID,
		Email:     claims.Subject,
		Roles:     claims.Roles,
		Issuer:    claims.Issuer,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
