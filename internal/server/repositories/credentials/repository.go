// Package credentials declares the repository contract for stored site
// credential entries.
package credentials

import (
	"context"

	"github.com/srolel/passkeep/internal/server/models"
)

// Repository persists credential entries. Entries carry only ciphertext in
// their secret fields and are append-only.
type Repository interface {
	// Create inserts a new entry owned by entry.UserID and returns it with
	// its ID set.
	Create(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error)

	// FindBySite returns the owner's entries whose site matches exactly.
	FindBySite(ctx context.Context, userID int64, site string) ([]*models.CredentialEntry, error)
}
