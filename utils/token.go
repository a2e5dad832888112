package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSessionToken returns a fresh opaque bearer credential: 32 bytes
// from crypto/rand, hex encoded. Each admin holds at most one at a time.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
