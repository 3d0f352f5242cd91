package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/shared"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "salt", "active",
		"activation_token_hash", "recovery_token_hash", "auth_token_hash", "created_at",
	})
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*salt,\s*active,\s*activation_token_hash\)`

	rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery(q).
		WithArgs("alice", "a@x.com", "digest", "salt", "acthash").
		WillReturnRows(rows)

	u := &models.User{
		Username:            "alice",
		Email:               "a@x.com",
		PasswordHash:        "digest",
		Salt:                "salt",
		ActivationTokenHash: sql.NullString{String: "acthash", Valid: true},
	}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 42 {
		t.Fatalf("unexpected user: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice", Email: "a@x.com"})
	if !errors.Is(err, shared.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := userRows().AddRow(int64(1), "alice", "a@x.com", "digest", "salt", true,
		nil, nil, "authhash", time.Now())

	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	u, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername error: %v", err)
	}
	if u.ID != 1 || !u.Active || u.AuthTokenHash.String != "authhash" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "nobody")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestActivate_SingleUse(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+users\s+SET\s+active\s*=\s*true,\s*activation_token_hash\s*=\s*NULL`

	mock.ExpectExec(q).WithArgs("acthash").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Activate(context.Background(), "acthash"); err != nil {
		t.Fatalf("first Activate error: %v", err)
	}

	// second use matches no rows: the token was cleared
	mock.ExpectExec(q).WithArgs("acthash").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Activate(context.Background(), "acthash"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on reuse, got %v", err)
	}
}

func TestRotateAuthTokenHash_CAS(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+users\s+SET\s+auth_token_hash\s*=\s*\$2\s+WHERE\s+auth_token_hash\s*=\s*\$1\s+RETURNING`

	rows := userRows().AddRow(int64(7), "alice", "a@x.com", "digest", "salt", true,
		nil, nil, "new", time.Now())
	mock.ExpectQuery(q).WithArgs("old", "new").WillReturnRows(rows)

	u, err := repo.RotateAuthTokenHash(context.Background(), "old", "new")
	if err != nil {
		t.Fatalf("RotateAuthTokenHash error: %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestRotateAuthTokenHash_ConflictLosesExplicitly(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users\s+SET\s+auth_token_hash`).
		WithArgs("stale", "new").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.RotateAuthTokenHash(context.Background(), "stale", "new")
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for stale hash, got %v", err)
	}
}

func TestClearAuthTokenHash_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `UPDATE\s+users\s+SET\s+auth_token_hash\s*=\s*NULL\s+WHERE\s+auth_token_hash\s*=\s*\$1`

	mock.ExpectExec(q).WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("h").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.ClearAuthTokenHash(context.Background(), "h"); err != nil {
		t.Fatalf("first clear error: %v", err)
	}
	if err := repo.ClearAuthTokenHash(context.Background(), "h"); err != nil {
		t.Fatalf("second clear must be a no-op, got %v", err)
	}
}

func TestUpdatePassword_ClearsTokens(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$2,\s*salt\s*=\s*\$3,\s*recovery_token_hash\s*=\s*NULL,\s*auth_token_hash\s*=\s*NULL`

	mock.ExpectExec(q).WithArgs(int64(7), "newdigest", "newsalt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdatePassword(context.Background(), 7, "newdigest", "newsalt"); err != nil {
		t.Fatalf("UpdatePassword error: %v", err)
	}
}
