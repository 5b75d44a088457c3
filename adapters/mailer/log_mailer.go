// Package mailer contains Mailer implementations. Real delivery goes
// through an external provider; the log mailer stands in for it during
// development and tests.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lumenpulse/anchor/ports"
)

// LogMailer writes password-reset emails to the log instead of sending
// them. This is the only place a raw reset token may appear in output.
type LogMailer struct {
	logger      *zap.Logger
	frontendURL string
}

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(logger *zap.Logger, frontendURL string) *LogMailer {
	return &LogMailer{logger: logger, frontendURL: frontendURL}
}

var _ ports.Mailer = (*LogMailer)(nil)

// SendPasswordReset logs the reset link that would have been emailed.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, rawToken string) error {
	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", m.frontendURL, rawToken)

	m.logger.Info("mock password reset email",
		zap.String("to", email),
		zap.String("subject", "Reset your password"),
		zap.String("reset_link", resetLink),
	)
	return nil
}
