package services

import (
	"context"
	"database/sql"

	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/server/repositories/repomanager"
	"github.com/srolel/passkeep/internal/shared"
)

// CredentialService stores and searches credential entries. The secret
// fields are opaque envelopes; the service never inspects them.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager) *CredentialService {
	return &CredentialService{db: db, repomanager: m}
}

// Add stores one entry for the owner. The site label is required: it is
// the only searchable field.
func (s *CredentialService) Add(ctx context.Context, userID int64, site, siteUsername, sitePassword string) error {

	if site == "" {
		return shared.ErrValidation
	}

	entry := &models.CredentialEntry{
		UserID:       userID,
		Site:         site,
		SiteUsername: siteUsername,
		SitePassword: sitePassword,
	}

	repo := s.repomanager.Credentials(s.db)

	if _, err := repo.Create(ctx, entry); err != nil {
		return shared.ErrInternal
	}

	return nil
}

// Search returns the owner's entries for an exact site match, envelopes
// unchanged.
func (s *CredentialService) Search(ctx context.Context, userID int64, site string) ([]*models.CredentialEntry, error) {

	if site == "" {
		return nil, shared.ErrValidation
	}

	repo := s.repomanager.Credentials(s.db)

	entries, err := repo.FindBySite(ctx, userID, site)
	if err != nil {
		return nil, shared.ErrInternal
	}

	return entries, nil
}
