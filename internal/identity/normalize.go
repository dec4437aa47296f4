package identity

import "strings"

// NormalizeEmail canonicalizes an address for storage and lookup. Trim and
// lower-case only; stricter rules can ship behind a versioned policy later.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
