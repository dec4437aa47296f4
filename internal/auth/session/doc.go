// Package session implements the two session-shaped token mechanisms:
// short-lived signed access tokens and persisted rotating refresh sessions.
//
// Access tokens are HMAC-signed JWTs (HS256 or HS512, chosen once from the
// configured secret length) and carry identity and roles; they cannot be
// revoked, so their TTL is short and long-lived control belongs to the
// refresh session.
//
// Refresh tokens are opaque random strings handed to the client exactly once.
// Only the SHA-256 hex digest is stored, so a storage leak never yields a
// usable session. Every use rotates the session: the presented session is
// revoked and a replacement is created in the same transaction, which bounds
// replay windows and turns theft into a detectable rotation conflict.
package session
