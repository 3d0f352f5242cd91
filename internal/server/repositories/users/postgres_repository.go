package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/srolel/passkeep/internal/dbx"
	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/shared"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, password_hash, salt, active,
		activation_token_hash, recovery_token_hash, auth_token_hash, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Salt, &user.Active, &user.ActivationTokenHash,
		&user.RecoveryTokenHash, &user.AuthTokenHash, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (username, email, password_hash, salt, active, activation_token_hash)
		 VALUES ($1, $2, $3, $4, false, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Salt, user.ActivationTokenHash).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, shared.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByAuthTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_token_hash = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, hash))
}

func (r *PostgresRepository) GetByRecoveryTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE recovery_token_hash = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, hash))
}

func (r *PostgresRepository) Activate(ctx context.Context, activationTokenHash string) error {

	query :=
		`UPDATE users SET active = true, activation_token_hash = NULL
		 WHERE activation_token_hash = $1 AND active = false
		 `

	res, err := r.db.ExecContext(ctx, query, activationTokenHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected != 1 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) SetAuthTokenHash(ctx context.Context, userID int64, hash string) error {

	query := `UPDATE users SET auth_token_hash = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if affected != 1 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) RotateAuthTokenHash(ctx context.Context, oldHash, newHash string) (*models.User, error) {

	// compare-and-swap: a concurrent rotation or logout makes this match
	// zero rows, so the losing caller fails explicitly instead of silently
	// shadowing the winner.
	query :=
		`UPDATE users SET auth_token_hash = $2
		 WHERE auth_token_hash = $1
		 RETURNING ` + userColumns

	return scanUser(r.db.QueryRowContext(ctx, query, oldHash, newHash))
}

func (r *PostgresRepository) ClearAuthTokenHash(ctx context.Context, hash string) error {

	query := `UPDATE users SET auth_token_hash = NULL WHERE auth_token_hash = $1`

	// matching zero rows is fine: logout is idempotent
	if _, err := r.db.ExecContext(ctx, query, hash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SetRecoveryTokenHash(ctx context.Context, userID int64, hash string) error {

	query := `UPDATE users SET recovery_token_hash = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, userID, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if affected != 1 {
		return shared.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) ClearRecoveryTokenHash(ctx context.Context, userID int64) error {

	query := `UPDATE users SET recovery_token_hash = NULL WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash, salt string) error {

	// a password change consumes the recovery token and revokes any live
	// session in the same statement
	query :=
		`UPDATE users SET password_hash = $2, salt = $3,
			recovery_token_hash = NULL, auth_token_hash = NULL
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID, passwordHash, salt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if affected, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if affected != 1 {
		return shared.ErrNotFound
	}

	return nil
}
