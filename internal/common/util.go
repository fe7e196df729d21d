package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// plaintext passwords read from the terminal as soon as they are sent.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NormalizeEmail trims surrounding whitespace and lower-cases an address so
// lookups by email are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
