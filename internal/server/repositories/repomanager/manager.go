// Package repomanager provides a factory that binds repositories to a
// database handle, so services can use the same repository code inside and
// outside transactions.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/srolel/passkeep/internal/dbx"
	"github.com/srolel/passkeep/internal/server/repositories/credentials"
	"github.com/srolel/passkeep/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given handle,
// which may be a *sql.DB or a transaction from dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Credentials(db dbx.DBTX) credentials.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
