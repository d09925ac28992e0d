package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyVerifier checks a presented admin key against a bcrypt hash
// from configuration. Destructive endpoints (library reset, cache
// maintenance) are guarded by it; with no hash configured they stay off.
type AdminKeyVerifier struct {
	hash []byte
}

// NewAdminKeyVerifier creates a verifier for the given bcrypt hash.
// An empty hash produces a disabled verifier.
func NewAdminKeyVerifier(hash string) *AdminKeyVerifier {
	return &AdminKeyVerifier{hash: []byte(hash)}
}

// Enabled reports whether an admin key hash is configured.
func (v *AdminKeyVerifier) Enabled() bool {
	return len(v.hash) > 0
}

// Verify compares the presented key against the configured hash.
func (v *AdminKeyVerifier) Verify(key string) error {
	if !v.Enabled() {
		return fmt.Errorf("admin key is not configured")
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(key)); err != nil {
		return fmt.Errorf("admin key mismatch: %w", err)
	}
	return nil
}

// HashAdminKey produces a bcrypt hash suitable for AUTH_ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash admin key: %w", err)
	}
	return string(hash), nil
}
