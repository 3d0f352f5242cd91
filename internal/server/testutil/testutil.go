// Package testutil provides in-memory repository fakes and capture doubles
// shared by service- and transport-level tests.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/srolel/passkeep/internal/dbx"
	"github.com/srolel/passkeep/internal/logging"
	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/server/repositories/credentials"
	"github.com/srolel/passkeep/internal/server/repositories/users"
	"github.com/srolel/passkeep/internal/shared"
)

// UserRepo is an in-memory users.Repository with the same error semantics
// as the postgres implementation.
type UserRepo struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*models.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byID: map[int64]*models.User{}}
}

func (r *UserRepo) findLocked(pred func(*models.User) bool) *models.User {
	for _, u := range r.byID {
		if pred(u) {
			return u
		}
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(func(u *models.User) bool {
		return u.Username == user.Username || u.Email == user.Email
	}) != nil {
		return nil, shared.ErrAlreadyExists
	}

	r.seq++
	user.ID = r.seq
	r.byID[user.ID] = copyUser(user)
	return user, nil
}

func (r *UserRepo) getBy(pred func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.findLocked(pred); u != nil {
		return copyUser(u), nil
	}
	return nil, shared.ErrNotFound
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(func(u *models.User) bool { return u.Username == username })
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepo) GetByAuthTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.getBy(func(u *models.User) bool { return u.AuthTokenHash.Valid && u.AuthTokenHash.String == hash })
}

func (r *UserRepo) GetByRecoveryTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return r.getBy(func(u *models.User) bool { return u.RecoveryTokenHash.Valid && u.RecoveryTokenHash.String == hash })
}

func (r *UserRepo) Activate(ctx context.Context, activationTokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(func(u *models.User) bool {
		return !u.Active && u.ActivationTokenHash.Valid && u.ActivationTokenHash.String == activationTokenHash
	})
	if u == nil {
		return shared.ErrNotFound
	}
	u.Active = true
	u.ActivationTokenHash = sql.NullString{}
	return nil
}

func (r *UserRepo) SetAuthTokenHash(ctx context.Context, userID int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.AuthTokenHash = sql.NullString{String: hash, Valid: true}
	return nil
}

func (r *UserRepo) RotateAuthTokenHash(ctx context.Context, oldHash, newHash string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.findLocked(func(u *models.User) bool {
		return u.AuthTokenHash.Valid && u.AuthTokenHash.String == oldHash
	})
	if u == nil {
		return nil, shared.ErrNotFound
	}
	u.AuthTokenHash = sql.NullString{String: newHash, Valid: true}
	return copyUser(u), nil
}

func (r *UserRepo) ClearAuthTokenHash(ctx context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u := r.findLocked(func(u *models.User) bool {
		return u.AuthTokenHash.Valid && u.AuthTokenHash.String == hash
	}); u != nil {
		u.AuthTokenHash = sql.NullString{}
	}
	return nil
}

func (r *UserRepo) SetRecoveryTokenHash(ctx context.Context, userID int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.RecoveryTokenHash = sql.NullString{String: hash, Valid: true}
	return nil
}

func (r *UserRepo) ClearRecoveryTokenHash(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byID[userID]; ok {
		u.RecoveryTokenHash = sql.NullString{}
	}
	return nil
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID int64, passwordHash, salt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.Salt = salt
	u.RecoveryTokenHash = sql.NullString{}
	u.AuthTokenHash = sql.NullString{}
	return nil
}

// CredRepo is an in-memory credentials.Repository.
type CredRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []*models.CredentialEntry
}

func NewCredRepo() *CredRepo {
	return &CredRepo{}
}

func (r *CredRepo) Create(ctx context.Context, entry *models.CredentialEntry) (*models.CredentialEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	entry.ID = r.seq
	c := *entry
	r.entries = append(r.entries, &c)
	return entry, nil
}

func (r *CredRepo) FindBySite(ctx context.Context, userID int64, site string) ([]*models.CredentialEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.CredentialEntry
	for _, e := range r.entries {
		if e.UserID == userID && e.Site == site {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

// Manager hands out the fakes regardless of the DB handle.
type Manager struct {
	UserRepo *UserRepo
	CredRepo *CredRepo
}

func NewManager() *Manager {
	return &Manager{UserRepo: NewUserRepo(), CredRepo: NewCredRepo()}
}

func (m *Manager) Users(db dbx.DBTX) users.Repository             { return m.UserRepo }
func (m *Manager) Credentials(db dbx.DBTX) credentials.Repository { return m.CredRepo }
func (m *Manager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

// CaptureMailer records the URLs it was asked to deliver instead of
// sending mail.
type CaptureMailer struct {
	mu             sync.Mutex
	ActivationURLs map[string]string // email -> url
	RecoveryURLs   map[string]string
	FailNext       bool
}

func NewCaptureMailer() *CaptureMailer {
	return &CaptureMailer{ActivationURLs: map[string]string{}, RecoveryURLs: map[string]string{}}
}

func (m *CaptureMailer) SendActivation(ctx context.Context, email, confirmationURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return io.ErrClosedPipe
	}
	m.ActivationURLs[email] = confirmationURL
	return nil
}

func (m *CaptureMailer) SendRecovery(ctx context.Context, email, recoveryURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext {
		m.FailNext = false
		return io.ErrClosedPipe
	}
	m.RecoveryURLs[email] = recoveryURL
	return nil
}

// Logger returns a logger that discards everything.
func Logger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// NewMockDB returns a *sql.DB whose transactions always succeed; the fake
// repositories carry the actual state.
func NewMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 16; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
