package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultVerifyTTL bounds how long an email-verify link stays usable.
const DefaultVerifyTTL = 24 * time.Hour

const verifyTokenType = "email-verify"

type verifyClaims struct {
	Type   string `json:"type"`
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// VerifyTokenIssuer mints and checks the short-lived JWT embedded in
// account-verification links. It is always HS512 and deliberately separate
// from access tokens: an access token must never pass as a verify token and
// vice versa, which the type claim enforces.
type VerifyTokenIssuer struct {
	issuer string
	secret []byte
	ttl    time.Duration
}

// NewVerifyTokenIssuer constructs a VerifyTokenIssuer. A zero ttl selects
// DefaultVerifyTTL.
func NewVerifyTokenIssuer(issuer string, secret []byte, ttl time.Duration) *VerifyTokenIssuer {
	if ttl <= 0 {
		ttl = DefaultVerifyTTL
	}
	return &VerifyTokenIssuer{issuer: issuer, secret: secret, ttl: ttl}
}

// Issue returns a signed verify token for the user.
func (v *VerifyTokenIssuer) Issue(userID, email string, now time.Time) (string, error) {
	claims := verifyClaims{
		Type:   verifyTokenType,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(v.secret)
}

// Verify checks a token and returns the user id it names. Every failure,
// expiry included, collapses into ErrVerifyTokenInvalid.
func (v *VerifyTokenIssuer) Verify(token string, now time.Time) (string, error) {
	var claims verifyClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", ErrVerifyTokenInvalid
	}
	if claims.Type != verifyTokenType || claims.UserID == "" {
		return "", ErrVerifyTokenInvalid
	}
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return "", ErrVerifyTokenInvalid
	}
	return claims.UserID, nil
}
