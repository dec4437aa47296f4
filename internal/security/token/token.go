package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

// HashSHA256Hex returns the SHA-256 hex digest of s.
//
// This is the canonical encoding for stored token hashes: lowercase hex,
// 64 characters, applied uniformly to refresh-session and survey-token
// secrets.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SignHMACSHA256 returns the raw HMAC-SHA256 of msg under key.
func SignHMACSHA256(msg string, key []byte) []byte {
	m := hmac.New(sha256.New, key)
	_, _ = m.Write([]byte(msg))
	return m.Sum(nil)
}

// SignHMACSHA512 returns the raw HMAC-SHA512 of msg under key.
func SignHMACSHA512(msg string, key []byte) []byte {
	m := hmac.New(sha512.New, key)
	_, _ = m.Write([]byte(msg))
	return m.Sum(nil)
}

// SignHMACSHA256URLSafe returns the base64url (no padding) HMAC-SHA256 of msg.
func SignHMACSHA256URLSafe(msg string, key []byte) string {
	return base64.RawURLEncoding.EncodeToString(SignHMACSHA256(msg, key))
}

// NewOpaqueToken generates nBytes of cryptographic randomness encoded as
// base64url without padding. The result is the plaintext secret handed to the
// client exactly once; only its digest is ever persisted.
func NewOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ConstantTimeEqual compares two strings without leaking the mismatch
// position through timing.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
