package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srolel/passkeep/internal/shared"
)

func tokenFromURL(t *testing.T, rawURL string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	token := u.Query().Get("token")
	require.NotEmpty(t, token, "mail link must carry a token: %s", rawURL)
	return token
}

func registerAndActivate(t *testing.T, f *fixture, username, email, password string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.accounts.Register(ctx, username, email, password))
	token := tokenFromURL(t, f.mailer.ActivationURLs[email])
	require.NoError(t, f.accounts.Activate(ctx, token))
}

func TestRegister_CreatesInactiveUserAndMailsToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.Register(ctx, "alice", "a@x.com", "secret1"))

	u, err := f.manager.UserRepo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, u.Active, "new accounts start inactive")
	assert.True(t, u.ActivationTokenHash.Valid)
	assert.NotEqual(t, "secret1", u.PasswordHash, "password must be stored hashed")

	link := f.mailer.ActivationURLs["a@x.com"]
	require.NotEmpty(t, link)

	// the stored digest corresponds to the mailed token, not the token itself
	token := tokenFromURL(t, link)
	assert.Equal(t, f.tokens.HashToken(token), u.ActivationTokenHash.String)
}

func TestRegister_ValidationFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.accounts.Register(ctx, "", "a@x.com", "pw"), shared.ErrValidation)
	assert.ErrorIs(t, f.accounts.Register(ctx, "alice", "", "pw"), shared.ErrValidation)
	assert.ErrorIs(t, f.accounts.Register(ctx, "alice", "a@x.com", ""), shared.ErrValidation)
}

func TestRegister_DuplicateUsernameOrEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.Register(ctx, "alice", "a@x.com", "secret1"))

	assert.ErrorIs(t, f.accounts.Register(ctx, "alice", "other@x.com", "pw"), shared.ErrAlreadyExists)
	assert.ErrorIs(t, f.accounts.Register(ctx, "bob", "a@x.com", "pw"), shared.ErrAlreadyExists)
}

func TestActivate_SingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.Register(ctx, "alice", "a@x.com", "secret1"))
	token := tokenFromURL(t, f.mailer.ActivationURLs["a@x.com"])

	require.NoError(t, f.accounts.Activate(ctx, token))

	u, err := f.manager.UserRepo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.Active)
	assert.False(t, u.ActivationTokenHash.Valid, "token must be cleared on use")

	// second use fails: the token was consumed
	assert.ErrorIs(t, f.accounts.Activate(ctx, token), shared.ErrUnauthorized)
}

func TestActivate_UnknownToken(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.accounts.Activate(context.Background(), "deadbeef"), shared.ErrUnauthorized)
	assert.ErrorIs(t, f.accounts.Activate(context.Background(), ""), shared.ErrUnauthorized)
}

func TestForgotPassword_UnknownEmailReportsSuccess(t *testing.T) {
	f := newFixture(t)

	// no account enumeration: the caller cannot tell this email is unknown
	require.NoError(t, f.accounts.ForgotPassword(context.Background(), "nobody@x.com"))
	assert.Empty(t, f.mailer.RecoveryURLs)
}

func TestForgotPassword_InactiveAccountReportsSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.accounts.Register(ctx, "alice", "a@x.com", "secret1"))

	require.NoError(t, f.accounts.ForgotPassword(ctx, "a@x.com"))
	assert.Empty(t, f.mailer.RecoveryURLs)
}

func TestForgotPassword_IssuesExpiringToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerAndActivate(t, f, "alice", "a@x.com", "secret1")

	require.NoError(t, f.accounts.ForgotPassword(ctx, "a@x.com"))

	token := tokenFromURL(t, f.mailer.RecoveryURLs["a@x.com"])
	assert.False(t, f.tokens.IsExpired(token), "fresh recovery token must not be expired")

	u, err := f.manager.UserRepo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, f.tokens.HashToken(token), u.RecoveryTokenHash.String)
}

func TestChangePassword_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerAndActivate(t, f, "alice", "a@x.com", "secret1")
	require.NoError(t, f.accounts.ForgotPassword(ctx, "a@x.com"))
	token := tokenFromURL(t, f.mailer.RecoveryURLs["a@x.com"])

	require.NoError(t, f.accounts.ChangePassword(ctx, token, "secret2"))

	// old password no longer works, new one does
	_, err := f.sessions.Login(ctx, "alice", "secret1", "")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = f.sessions.Login(ctx, "alice", "secret2", "")
	assert.NoError(t, err)

	// token consumed
	assert.ErrorIs(t, f.accounts.ChangePassword(ctx, token, "secret3"), shared.ErrUnauthorized)
}

func TestChangePassword_RevokesLiveSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerAndActivate(t, f, "alice", "a@x.com", "secret1")
	session, err := f.sessions.Login(ctx, "alice", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, f.accounts.ForgotPassword(ctx, "a@x.com"))
	token := tokenFromURL(t, f.mailer.RecoveryURLs["a@x.com"])
	require.NoError(t, f.accounts.ChangePassword(ctx, token, "secret2"))

	_, err = f.sessions.Resolve(ctx, session.AuthToken)
	assert.ErrorIs(t, err, shared.ErrUnauthorized, "password change must revoke sessions")
}

func TestChangePassword_ExpiredTokenConsumedOnFirstAttempt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registerAndActivate(t, f, "alice", "a@x.com", "secret1")

	// craft an already-expired recovery token and store its digest
	expired, err := f.tokens.GenerateWithExpiry(-time.Minute)
	require.NoError(t, err)
	u, err := f.manager.UserRepo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, f.manager.UserRepo.SetRecoveryTokenHash(ctx, u.ID, f.tokens.HashToken(expired)))

	assert.ErrorIs(t, f.accounts.ChangePassword(ctx, expired, "secret2"), shared.ErrTokenExpired)

	// the expired token was cleared, so the retry fails differently
	assert.ErrorIs(t, f.accounts.ChangePassword(ctx, expired, "secret2"), shared.ErrUnauthorized)

	// the password is unchanged
	_, err = f.sessions.Login(ctx, "alice", "secret1", "")
	assert.NoError(t, err)
}

func TestChangePassword_UnknownToken(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.accounts.ChangePassword(context.Background(), "deadbeef", "pw"), shared.ErrUnauthorized)
}

func TestRegister_MailFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mailer.FailNext = true
	err := f.accounts.Register(ctx, "alice", "a@x.com", "secret1")
	assert.ErrorIs(t, err, shared.ErrInternal)
}
