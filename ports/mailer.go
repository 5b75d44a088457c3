package ports

import "context"

// Mailer delivers password-reset links out of band. It receives the raw
// token exactly once; implementations must not persist it.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, rawToken string) error
}
