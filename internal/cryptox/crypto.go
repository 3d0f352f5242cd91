// Package cryptox implements the client-resident envelope encryption used
// for credential fields. The key is derived from the user's login password
// and lives only in client memory; the server stores and returns the
// resulting envelopes as opaque strings.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"

	"github.com/srolel/passkeep/internal/shared"
)

const (
	// KeySize is the derived AES-128 key length in bytes.
	KeySize = 16

	// NonceSize is the AES-GCM nonce length in bytes. Envelopes embed the
	// nonce as a hex prefix of fixed width, so this must never change for
	// stored data to remain readable.
	NonceSize = 12
)

// DeriveKey derives a fixed-length symmetric key from the user's master
// password. A single PBKDF2-SHA512 iteration with the password as its own
// salt is intentional: the password has already been rate-limited and
// slow-hashed server-side, and the derivation runs on every field access.
//
// The caller should wipe the password buffer when it is no longer needed.
func DeriveKey(masterPassword []byte) []byte {
	return pbkdf2.Key(masterPassword, masterPassword, 1, KeySize, sha512.New)
}

// Encrypt seals plaintext with AES-GCM under key using a fresh random
// nonce and returns the envelope hex(nonce) || hex(ciphertext+tag) as a
// single string. Nonces never repeat for a given key; reusing one under
// AEAD would break confidentiality.
func Encrypt(key []byte, plaintext string) (string, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce) + hex.EncodeToString(ciphertext), nil
}

// Decrypt splits the envelope at the fixed nonce width and opens it with
// AES-GCM. A malformed envelope, a wrong key, or a tampered ciphertext all
// return shared.ErrDecryptionFailure; corrupted plaintext is never
// returned silently.
func Decrypt(key []byte, envelope string) (string, error) {
	if len(envelope) < NonceSize*2 {
		return "", shared.ErrDecryptionFailure
	}

	nonce, err := hex.DecodeString(envelope[:NonceSize*2])
	if err != nil {
		return "", shared.ErrDecryptionFailure
	}

	ciphertext, err := hex.DecodeString(envelope[NonceSize*2:])
	if err != nil {
		return "", shared.ErrDecryptionFailure
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", shared.ErrDecryptionFailure
	}

	return string(plaintext), nil
}
