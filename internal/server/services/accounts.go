package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/srolel/passkeep/internal/dbx"
	"github.com/srolel/passkeep/internal/logging"
	"github.com/srolel/passkeep/internal/server/auth"
	"github.com/srolel/passkeep/internal/server/config"
	"github.com/srolel/passkeep/internal/server/mail"
	"github.com/srolel/passkeep/internal/server/models"
	"github.com/srolel/passkeep/internal/server/repositories/repomanager"
	"github.com/srolel/passkeep/internal/shared"
)

// AccountService drives the account lifecycle: unregistered → pending →
// active, and active → recovering → active for password reset.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenService
	mailer      mail.Mailer
	logger      logging.Logger
	config      *config.Config
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, mailer mail.Mailer, logger logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		mailer:      mailer,
		logger:      logger,
		config:      cfg,
	}
}

// Register creates an inactive user and mails the activation link. A
// duplicate username or email surfaces as ErrAlreadyExists.
func (s *AccountService) Register(ctx context.Context, username, email, password string) error {

	if username == "" || email == "" || password == "" {
		return shared.ErrValidation
	}

	salt, err := s.tokens.Generate()
	if err != nil {
		return shared.ErrInternal
	}

	activationToken, err := s.tokens.Generate()
	if err != nil {
		return shared.ErrInternal
	}

	user := &models.User{
		Username:            username,
		Email:               email,
		PasswordHash:        s.hasher.Hash(password, salt),
		Salt:                salt,
		ActivationTokenHash: sql.NullString{String: s.tokens.HashToken(activationToken), Valid: true},
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return shared.ErrAlreadyExists
		}
		return shared.ErrInternal
	}

	confirmationURL := fmt.Sprintf("%s/confirm?token=%s", s.config.BaseURL, activationToken)
	if err := s.mailer.SendActivation(ctx, email, confirmationURL); err != nil {
		s.logger.Error(ctx, "activation mail failed", "email", email, "error", err.Error())
		return shared.ErrInternal
	}

	return nil
}

// Activate consumes an activation token. The matching user becomes active
// and the token is cleared, so a second call with the same token fails.
func (s *AccountService) Activate(ctx context.Context, token string) error {

	if token == "" {
		return shared.ErrUnauthorized
	}

	repo := s.repomanager.Users(s.db)

	if err := repo.Activate(ctx, s.tokens.HashToken(token)); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrUnauthorized
		}
		return shared.ErrInternal
	}

	return nil
}

// ForgotPassword issues a recovery token for the active account holding
// email. An unknown email reports success to the caller and is only logged
// internally, so the endpoint does not reveal which addresses are
// registered.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {

	if email == "" {
		return shared.ErrValidation
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info(ctx, "password recovery for unknown email", "email", email)
			return nil
		}
		return shared.ErrInternal
	}

	if !user.Active {
		s.logger.Info(ctx, "password recovery for inactive account", "username", user.Username)
		return nil
	}

	recoveryToken, err := s.tokens.GenerateWithExpiry(s.config.RecoveryTokenTTL)
	if err != nil {
		return shared.ErrInternal
	}

	if err := repo.SetRecoveryTokenHash(ctx, user.ID, s.tokens.HashToken(recoveryToken)); err != nil {
		return shared.ErrInternal
	}

	recoveryURL := fmt.Sprintf("%s/recover?token=%s", s.config.BaseURL, recoveryToken)
	if err := s.mailer.SendRecovery(ctx, email, recoveryURL); err != nil {
		s.logger.Error(ctx, "recovery mail failed", "email", email, "error", err.Error())
		return shared.ErrInternal
	}

	return nil
}

// ChangePassword consumes a recovery token and stores a new password. An
// expired token is cleared on first use, so a retry with the same token
// fails with ErrUnauthorized rather than ErrTokenExpired. A successful
// change also revokes any live session.
func (s *AccountService) ChangePassword(ctx context.Context, token, newPassword string) error {

	if token == "" || newPassword == "" {
		return shared.ErrValidation
	}

	salt, err := s.tokens.Generate()
	if err != nil {
		return shared.ErrInternal
	}
	passwordHash := s.hasher.Hash(newPassword, salt)
	tokenHash := s.tokens.HashToken(token)

	var resultErr error

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {

		repo := s.repomanager.Users(tx)

		user, err := repo.GetByRecoveryTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				resultErr = shared.ErrUnauthorized
				return nil
			}
			return err
		}

		// expiry is enforced at use-time; the token is consumed either way
		if s.tokens.IsExpired(token) {
			resultErr = shared.ErrTokenExpired
			return repo.ClearRecoveryTokenHash(ctx, user.ID)
		}

		return repo.UpdatePassword(ctx, user.ID, passwordHash, salt)
	})

	if err != nil {
		return shared.ErrInternal
	}

	return resultErr
}
