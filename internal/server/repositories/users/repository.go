// Package users declares the server-side repository contract for account
// records.
package users

import (
	"context"

	"github.com/srolel/passkeep/internal/server/models"
)

// Repository defines the persistence operations the session and account
// services need. All token arguments are peppered digests, never plaintext
// tokens. Implementations return shared.ErrNotFound when a lookup matches
// no row and shared.ErrAlreadyExists on uniqueness violations.
type Repository interface {
	// Create inserts a new inactive user and returns it with its ID set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUsername returns the user with the given username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByEmail returns the user with the given email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByAuthTokenHash resolves the session owner from an auth-token digest.
	GetByAuthTokenHash(ctx context.Context, hash string) (*models.User, error)

	// GetByRecoveryTokenHash resolves a user from a recovery-token digest.
	GetByRecoveryTokenHash(ctx context.Context, hash string) (*models.User, error)

	// Activate marks the user holding the activation-token digest active and
	// clears the token. Exactly one row must match; otherwise ErrNotFound.
	Activate(ctx context.Context, activationTokenHash string) error

	// SetAuthTokenHash stores a new session digest, replacing any prior one.
	SetAuthTokenHash(ctx context.Context, userID int64, hash string) error

	// RotateAuthTokenHash swaps oldHash for newHash in a single
	// compare-and-swap and returns the owning user. ErrNotFound means the
	// session was concurrently rotated or revoked.
	RotateAuthTokenHash(ctx context.Context, oldHash, newHash string) (*models.User, error)

	// ClearAuthTokenHash revokes the session holding hash. Idempotent.
	ClearAuthTokenHash(ctx context.Context, hash string) error

	// SetRecoveryTokenHash stores a recovery-token digest for the user.
	SetRecoveryTokenHash(ctx context.Context, userID int64, hash string) error

	// ClearRecoveryTokenHash discards the user's outstanding recovery token.
	ClearRecoveryTokenHash(ctx context.Context, userID int64) error

	// UpdatePassword stores a new password digest and salt, clears the
	// recovery token, and revokes any live session.
	UpdatePassword(ctx context.Context, userID int64, passwordHash, salt string) error
}
