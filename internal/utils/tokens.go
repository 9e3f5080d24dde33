package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken returns nBytes of crypto randomness hex-encoded. Used for refresh,
// verification and password reset tokens.
func RandomToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
