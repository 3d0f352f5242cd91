package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/srolel/passkeep/internal/server/auth"
	"github.com/srolel/passkeep/internal/server/config"
	"github.com/srolel/passkeep/internal/server/testutil"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newMockDB(t *testing.T) *sql.DB {
	t.Helper()
	return testutil.NewMockDB(t)
}

type fixture struct {
	manager  *testutil.Manager
	mailer   *testutil.CaptureMailer
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService
	sessions *SessionService
	accounts *AccountService
	creds    *CredentialService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newMockDB(t)
	manager := testutil.NewManager()
	mailer := testutil.NewCaptureMailer()
	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenService("test-pepper")
	cfg := testConfig()

	return &fixture{
		manager:  manager,
		mailer:   mailer,
		hasher:   hasher,
		tokens:   tokens,
		sessions: NewSessionService(db, manager, hasher, tokens, noopLimiter{}),
		accounts: NewAccountService(db, manager, hasher, tokens, mailer, testutil.Logger(), cfg),
		creds:    NewCredentialService(db, manager),
	}
}

type noopLimiter struct{}

func (noopLimiter) Enforce(ctx context.Context, username, ip string) error { return nil }
