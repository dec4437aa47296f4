package session

import (
	"github.com/fabsGitHub/team-analyzer/internal/security/token"
)

// newOpaqueRefreshToken generates the plaintext refresh secret together with
// the hex digest that is the only thing ever persisted.
func newOpaqueRefreshToken(nBytes int) (plain string, hashHex string, err error) {
	plain, err = token.NewOpaqueToken(nBytes)
	if err != nil {
		return "", "", err
	}
	return plain, token.HashSHA256Hex(plain), nil
}
