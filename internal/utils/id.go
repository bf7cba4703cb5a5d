package utils

import (
	"github.com/google/uuid"
)

// NewID returns a random opaque identifier (UUIDv4 string form).
func NewID() string {
	return uuid.NewString()
}

// ShortSuffix returns the last n characters of id, or the whole id if shorter.
func ShortSuffix(id string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(id)
	if len(r) <= n {
		return id
	}
	return string(r[len(r)-n:])
}
