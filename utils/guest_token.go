package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateGuestToken returns a 256-bit random token, hex encoded. It is the
// only credential a guest ever holds, so it must come from crypto/rand.
func GenerateGuestToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
