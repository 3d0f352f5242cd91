package credentials

import (
	"context"
	"fmt"

	"github.com/srolel/passkeep/internal/dbx"
	"github.com/srolel/passkeep/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error) {

	query :=
		`INSERT INTO credentials (user_id, site, site_username, site_password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.Site, entry.SiteUsername, entry.SitePassword).Scan(&entry.ID)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

func (r *PostgresRepository) FindBySite(ctx context.Context, userID int64, site string) ([]*models.CredentialEntry, error) {

	query :=
		`SELECT id, user_id, site, site_username, site_password, created_at
		 FROM credentials
		 WHERE user_id = $1 AND site = $2
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, site)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.CredentialEntry
	for rows.Next() {
		entry := &models.CredentialEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Site,
			&entry.SiteUsername, &entry.SitePassword, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}
