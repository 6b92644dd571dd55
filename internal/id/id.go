package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ShortLen is the number of characters shown for an ID in listings.
const ShortLen = 8

// Generator returns a fresh expense ID.
type Generator func() string

// New returns a random (v4) expense ID like "3f2b9c1e-...".
func New() string {
	return uuid.NewString()
}

// Short returns the display prefix of an ID.
// "3f2b9c1e-7a4d-4e4b-9d55-0c2b1b9e6f10" -> "3f2b9c1e"
func Short(id string) string {
	if len(id) <= ShortLen {
		return id
	}
	return id[:ShortLen]
}

// Parse validates and canonicalizes an ID (lowercase, hyphenated).
func Parse(s string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid expense ID %q: %w", s, err)
	}
	return u.String(), nil
}

// Sequence returns a Generator producing "<prefix>-0001", "<prefix>-0002", ...
// It is meant for tests and fixtures where stable IDs are useful.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%04d", prefix, n)
	}
}
