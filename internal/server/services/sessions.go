// Package services implements the business logic between the HTTP layer
// and the repositories: session lifecycle, account lifecycle, and
// credential storage.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/srolel/passkeep/internal/server/auth"
	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/server/ratelimit"
	"github.com/srolel/passkeep/internal/server/repositories/repomanager"
	"github.com/srolel/passkeep/internal/shared"
)

// Session carries the plaintext tokens issued to a client. The auth token
// is persisted only as a peppered digest; the CSRF token is not persisted
// at all (double-submit scheme).
type Session struct {
	Username  string
	AuthToken string
	CSRFToken string
}

// SessionService issues, rotates, and revokes sessions. One active session
// per user: every login or refresh replaces the stored digest, and a
// losing concurrent rotation fails explicitly.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	limiter     ratelimit.Limiter
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, limiter ratelimit.Limiter) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		limiter:     limiter,
	}
}

func (s *SessionService) newTokenPair() (authToken, csrfToken string, err error) {
	authToken, err = s.tokens.Generate()
	if err != nil {
		return "", "", fmt.Errorf("error generating auth token: %w", err)
	}
	csrfToken, err = s.tokens.Generate()
	if err != nil {
		return "", "", fmt.Errorf("error generating csrf token: %w", err)
	}
	return authToken, csrfToken, nil
}

// Login authenticates username/password and issues a fresh session,
// replacing any prior one. Inactive accounts never authenticate.
func (s *SessionService) Login(ctx context.Context, username, password, ip string) (*Session, error) {

	if err := s.limiter.Enforce(ctx, username, ip); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.ErrInternal
	}

	if !user.Active {
		return nil, shared.ErrUnauthorized
	}

	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		return nil, shared.ErrUnauthorized
	}

	authToken, csrfToken, err := s.newTokenPair()
	if err != nil {
		return nil, shared.ErrInternal
	}

	if err := repo.SetAuthTokenHash(ctx, user.ID, s.tokens.HashToken(authToken)); err != nil {
		return nil, shared.ErrInternal
	}

	return &Session{Username: user.Username, AuthToken: authToken, CSRFToken: csrfToken}, nil
}

// Refresh rotates the presented session. The swap is a compare-and-swap on
// the stored digest: if another refresh or a logout got there first, the
// call fails with ErrUnauthorized instead of silently shadowing the winner.
func (s *SessionService) Refresh(ctx context.Context, authToken string) (*Session, error) {

	if authToken == "" {
		return nil, shared.ErrUnauthorized
	}

	newToken, csrfToken, err := s.newTokenPair()
	if err != nil {
		return nil, shared.ErrInternal
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.RotateAuthTokenHash(ctx, s.tokens.HashToken(authToken), s.tokens.HashToken(newToken))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.ErrInternal
	}

	return &Session{Username: user.Username, AuthToken: newToken, CSRFToken: csrfToken}, nil
}

// Logout revokes the presented session. Revoking an unknown or already
// revoked token is not an error.
func (s *SessionService) Logout(ctx context.Context, authToken string) error {

	if authToken == "" {
		return nil
	}

	repo := s.repomanager.Users(s.db)

	if err := repo.ClearAuthTokenHash(ctx, s.tokens.HashToken(authToken)); err != nil {
		return shared.ErrInternal
	}

	return nil
}

// Resolve returns the owner of the presented auth token. Presenting the
// plaintext token is the only way to prove identity.
func (s *SessionService) Resolve(ctx context.Context, authToken string) (*models.User, error) {

	if authToken == "" {
		return nil, shared.ErrUnauthorized
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByAuthTokenHash(ctx, s.tokens.HashToken(authToken))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, shared.ErrInternal
	}

	return user, nil
}
