package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewOpaqueToken mints a random single-use secret. The raw value goes to the
// user exactly once (inside an emailed link); only the sha256 hash is stored,
// so possession of the database row alone cannot forge the token.
func NewOpaqueToken() (raw string, hashed string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}

// HashToken maps a raw token onto its storage form.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
