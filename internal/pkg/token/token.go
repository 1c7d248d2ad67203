package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewSessionToken generates the opaque random token stored in the session
// cookie. UUIDv4 matches what browsers received from the previous deployment.
func NewSessionToken() string {
	return uuid.NewString()
}

// NewLinkToken generates a cryptographically random 64-character hex token
// for magic-link URLs.
func NewLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
