// Package identity owns the user records the token subsystem authenticates.
// It covers registration, email verification, login checks and password
// reset. Mail delivery is out of scope; callers receive verification and
// reset secrets and decide how to transport them.
package identity
