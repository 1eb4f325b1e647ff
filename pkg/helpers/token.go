package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const refreshSecretBytes = 64

// NewRefreshSecret returns 64 random bytes hex encoded.
func NewRefreshSecret() (string, error) {
	b := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// HashToken is the one-way digest stored in place of refresh secrets and
// verification tokens.
func HashToken(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
