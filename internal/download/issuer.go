// Package download issues and verifies stateless signed capability tokens
// for survey result exports. A token is "payload.signature" where payload is
// the base64url encoding of a small JSON document and signature is the
// base64url HMAC-SHA256 of that encoded payload. Nothing is persisted;
// possession of an unexpired, correctly signed token is the authorization.
package download

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	sectoken "github.com/fabsGitHub/team-analyzer/internal/security/token"
)

// DefaultTTL bounds how long an issued download link stays usable.
const DefaultTTL = 10 * time.Minute

type payload struct {
	SurveyID string `json:"sid"`
	UserID   string `json:"uid"`
	Exp      int64  `json:"exp"`
}

// Issuer mints and verifies download tokens with a dedicated signing key.
type Issuer struct {
	key []byte
	ttl time.Duration
}

// NewIssuer constructs an Issuer. A zero ttl selects DefaultTTL.
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl}
}

// Issue returns a token granting userID access to the export of surveyID
// until now+ttl.
func (i *Issuer) Issue(surveyID, userID string, now time.Time) (string, error) {
	raw, err := json.Marshal(payload{
		SurveyID: surveyID,
		UserID:   userID,
		Exp:      now.Add(i.ttl).Unix(),
	})
	if err != nil {
		return "", err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	sig := sectoken.SignHMACSHA256URLSafe(encoded, i.key)
	return encoded + "." + sig, nil
}

// VerifyAndExtractUser validates a token against the expected survey and
// returns the user it was issued to. Every failure mode other than expiry
// collapses into ErrInvalidToken; expiry returns ErrExpired, which still
// matches ErrInvalidToken.
func (i *Issuer) VerifyAndExtractUser(token, surveyID string, now time.Time) (string, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || sig == "" {
		return "", ErrInvalidToken
	}
	want := sectoken.SignHMACSHA256URLSafe(encoded, i.key)
	if !sectoken.ConstantTimeEqual(sig, want) {
		return "", ErrInvalidToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidToken
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", ErrInvalidToken
	}
	if p.SurveyID != surveyID || p.UserID == "" {
		return "", ErrInvalidToken
	}
	// The bound is inclusive: a token presented at exactly its expiry
	// instant still verifies.
	if now.After(time.Unix(p.Exp, 0)) {
		return "", ErrExpired
	}
	return p.UserID, nil
}
