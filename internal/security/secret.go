// Package security provides token secret generation and password hashing.
package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// SecretLen is the byte length of a bearer token secret before encoding.
const SecretLen = 32

// GenerateSecret returns a new cryptographically random bearer token secret,
// base64url-encoded without padding. Returns an error if the system randomness
// source fails; callers must treat that as fatal for the issuing request and
// never fall back to a weaker source.
func GenerateSecret() (string, error) {
	b := make([]byte, SecretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("security: generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ValidSecretEncoding reports whether s is a well-formed secret: base64url
// without padding, decoding to exactly SecretLen bytes. A malformed secret is
// indistinguishable from an unknown one at the API surface; this check only
// lets lookups skip map access for garbage input.
func ValidSecretEncoding(s string) bool {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return false
	}
	return len(b) == SecretLen
}
