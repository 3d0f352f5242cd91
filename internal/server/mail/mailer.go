// Package mail delivers account lifecycle messages. The account service
// only depends on the Mailer interface; the SMTP implementation lives in
// smtp.go.
package mail

import "context"

// Mailer sends the activation and recovery links produced by the account
// lifecycle. Implementations must not log or persist the URLs: they carry
// single-use capability tokens.
type Mailer interface {
	SendActivation(ctx context.Context, email, confirmationURL string) error
	SendRecovery(ctx context.Context, email, recoveryURL string) error
}
