package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewVerificationToken returns nBytes of randomness encoded as unpadded
// URL-safe base64, so the token survives being embedded in a query string.
func NewVerificationToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
