package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

const (
	// DefaultResetTokenTTL is how long a password-reset token stays valid.
	DefaultResetTokenTTL = time.Hour

	// bcryptCost matches the cost factor used for all stored passwords.
	bcryptCost = 10

	resetTokenBytes = 32
)

// GenericResetMessage is returned by ForgotPassword on every branch so the
// response never reveals whether an email is registered.
const GenericResetMessage = "If that email is registered, a reset link has been sent."

// ResetSuccessMessage is returned after a successful password reset.
const ResetSuccessMessage = "Password has been reset successfully."

// AccountService handles registration, password login and the
// password-reset token lifecycle.
type AccountService struct {
	users       ports.UserRepository
	resetTokens ports.ResetTokenRepository
	mailer      ports.Mailer
	events      ports.EventPublisher
	logger      *zap.Logger

	resetTTL time.Duration
	now      func() time.Time
}

// NewAccountService constructs the account service.
func NewAccountService(
	users ports.UserRepository,
	resetTokens ports.ResetTokenRepository,
	mailer ports.Mailer,
	events ports.EventPublisher,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		users:       users,
		resetTokens: resetTokens,
		mailer:      mailer,
		events:      events,
		logger:      logger,
		resetTTL:    DefaultResetTokenTTL,
		now:         time.Now,
	}
}

// Register creates a new email+password user.
func (s *AccountService) Register(ctx context.Context, email, password string) (*core.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, core.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &core.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login validates an email+password pair. Every failure collapses to
// ErrInvalidCredentials so responses do not reveal which part was wrong.
func (s *AccountService) Login(ctx context.Context, email, password string) (*core.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || user.PasswordHash == "" {
		return nil, core.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, core.ErrInvalidCredentials
	}
	return user, nil
}

// ForgotPassword issues a fresh one-time reset token for the account and
// hands the raw token to the mailer. The returned message is identical
// whether or not the email exists.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			s.logger.Debug("password reset requested for unknown email")
			return GenericResetMessage, nil
		}
		return "", err
	}

	// A new request supersedes every outstanding token for this user.
	if _, err := s.resetTokens.InvalidateForUser(ctx, user.ID); err != nil {
		return "", fmt.Errorf("failed to invalidate prior tokens: %w", err)
	}

	rawToken, err := randomHex(resetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}

	now := s.now()
	token := &core.ResetToken{
		ID:        uuid.New(),
		TokenHash: hashToken(rawToken),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resetTokens.Create(ctx, token); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// Delivery is fire-and-forget: a mailer failure does not roll back
	// the issued token.
	if err := s.mailer.SendPasswordReset(ctx, user.Email, rawToken); err != nil {
		s.logger.Warn("failed to send password reset email", zap.Error(err))
	}

	return GenericResetMessage, nil
}

// ResetPassword redeems a raw reset token and sets a new password. A token
// is redeemable exactly once: both successful redemption and an
// expired-but-unused token end up marked used.
func (s *AccountService) ResetPassword(ctx context.Context, rawToken, newPassword string) (string, error) {
	token, err := s.resetTokens.GetUnusedByHash(ctx, hashToken(rawToken))
	if err != nil {
		return "", core.ErrInvalidResetToken
	}

	now := s.now()
	if now.After(token.ExpiresAt) {
		// Mark the expired token used so it cannot be retried.
		if err := s.resetTokens.MarkUsed(ctx, token.ID); err != nil {
			s.logger.Warn("failed to mark expired token used", zap.Error(err))
		}
		return "", core.ErrResetTokenExpired
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return "", core.ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = now
	if err := s.users.Save(ctx, user); err != nil {
		return "", fmt.Errorf("failed to save user: %w", err)
	}

	if err := s.resetTokens.MarkUsed(ctx, token.ID); err != nil {
		return "", fmt.Errorf("failed to mark token used: %w", err)
	}

	if err := s.events.PublishPasswordReset(ctx, user.ID.String()); err != nil {
		s.logger.Warn("failed to publish password reset event", zap.Error(err))
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID.String()))
	return ResetSuccessMessage, nil
}

// Profile fetches the account backing an authenticated session.
func (s *AccountService) Profile(ctx context.Context, id uuid.UUID) (*core.User, error) {
	return s.users.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashToken returns the hex SHA-256 of a raw token. Raw tokens are never
// persisted; lookups go through this hash.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
