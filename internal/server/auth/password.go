// Package auth provides the password hashing and token primitives the
// session and account services are built on.
package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	defaultIterations = 4096
	defaultKeyLength  = 64
)

// PasswordHasher derives salted password digests with PBKDF2-HMAC-SHA512.
// Hashing is deterministic for fixed inputs; verification recomputes the
// digest and compares in constant time.
type PasswordHasher struct {
	iterations int
	keyLength  int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{iterations: defaultIterations, keyLength: defaultKeyLength}
}

// Hash returns the hex digest of secret under salt.
func (h *PasswordHasher) Hash(secret, salt string) string {
	digest := pbkdf2.Key([]byte(secret), []byte(salt), h.iterations, h.keyLength, sha512.New)
	return hex.EncodeToString(digest)
}

// Verify recomputes the digest for secret/salt and compares it with
// expected in constant time.
func (h *PasswordHasher) Verify(secret, salt, expected string) bool {
	digest := h.Hash(secret, salt)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(expected)) == 1
}
