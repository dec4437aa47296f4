// Package token holds the digest and HMAC primitives shared by the token
// managers.
//
// Keys are always passed in explicitly; this package never reads ambient
// state. Stored hashes use one canonical encoding (lowercase SHA-256 hex)
// so that lookups by hash behave identically everywhere.
package token
