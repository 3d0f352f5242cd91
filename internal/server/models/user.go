// Package models holds the persistent data structures shared by the server
// repositories and services.
package models

import (
	"database/sql"
	"time"
)

// User is the account record. The password is stored as a salted
// PBKDF2-SHA512 hex digest. All capability tokens (activation, recovery,
// auth) are stored only as peppered HMAC digests so a database disclosure
// does not yield usable tokens.
//
// An inactive user can never authenticate, regardless of credentials.
// At most one of each token kind is outstanding per user.
type User struct {
	ID                  int64
	Username            string
	Email               string
	PasswordHash        string
	Salt                string
	Active              bool
	ActivationTokenHash sql.NullString
	RecoveryTokenHash   sql.NullString
	AuthTokenHash       sql.NullString
	CreatedAt           time.Time
}
