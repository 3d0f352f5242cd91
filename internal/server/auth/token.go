package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/srolel/passkeep/internal/shared"
)

const (
	// tokenBytes is the entropy of a plain token; the hex form is twice as long.
	tokenBytes = 24

	// expiryPrefixLen is the width of the Unix-millisecond expiry prefix on
	// tokens produced by GenerateWithExpiry. 13 digits covers timestamps
	// until the year 2286.
	expiryPrefixLen = 13
)

// TokenService generates opaque capability tokens and hashes them with a
// process-wide pepper before they are persisted. Plaintext tokens only ever
// travel to the client; the database sees digests.
type TokenService struct {
	pepper []byte
}

func NewTokenService(pepper string) *TokenService {
	return &TokenService{pepper: []byte(pepper)}
}

// Generate returns a fresh random hex token from the system CSPRNG.
func (s *TokenService) Generate() (string, error) {
	return shared.MakeRandHexString(tokenBytes)
}

// GenerateWithExpiry returns a token whose first 13 characters encode the
// absolute expiry as Unix milliseconds; the remainder is random entropy.
func (s *TokenService) GenerateWithExpiry(ttl time.Duration) (string, error) {
	token, err := s.Generate()
	if err != nil {
		return "", err
	}
	expiry := time.Now().Add(ttl).UnixMilli()
	return strconv.FormatInt(expiry, 10) + token, nil
}

// IsExpired parses the embedded expiry prefix and compares it with the
// current time. Tokens too short to carry a prefix, or with a malformed
// prefix, are treated as expired.
func (s *TokenService) IsExpired(token string) bool {
	if len(token) < expiryPrefixLen {
		return true
	}
	ms, err := strconv.ParseInt(token[:expiryPrefixLen], 10, 64)
	if err != nil {
		return true
	}
	return time.Now().UnixMilli() > ms
}

// HashToken returns the hex HMAC-SHA256 digest of token keyed with the
// pepper. Deterministic, so stored digests can be looked up by equality.
func (s *TokenService) HashToken(token string) string {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
