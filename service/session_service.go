package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

// DefaultRefreshTTL is how long a refresh token stays redeemable.
const DefaultRefreshTTL = 7 * 24 * time.Hour

// TokenPair is an access token together with the raw refresh token that
// can later be exchanged for a new pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionService issues access tokens backed by persisted, hashed refresh
// tokens, and handles rotation and revocation.
type SessionService struct {
	users     ports.UserRepository
	refresh   ports.RefreshTokenRepository
	tokenizer ports.Tokenizer
	events    ports.EventPublisher
	logger    *zap.Logger

	refreshTTL time.Duration
	now        func() time.Time
}

// NewSessionService constructs the session service.
func NewSessionService(
	users ports.UserRepository,
	refresh ports.RefreshTokenRepository,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		users:      users,
		refresh:    refresh,
		tokenizer:  tokenizer,
		events:     events,
		logger:     logger,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
}

// Open creates a new token pair for an authenticated user. Only the hash
// of the refresh token is persisted.
func (s *SessionService) Open(ctx context.Context, user *core.User, deviceInfo, ipAddress string) (*TokenPair, error) {
	access, err := s.tokenizer.Issue(&core.Session{
		UserID:   user.ID,
		AuthType: core.AuthTypePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	rawRefresh, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	token := &core.RefreshToken{
		ID:         uuid.New(),
		TokenHash:  hashToken(rawRefresh),
		UserID:     user.ID,
		ExpiresAt:  now.Add(s.refreshTTL),
		DeviceInfo: deviceInfo,
		IPAddress:  ipAddress,
		CreatedAt:  now,
	}
	if err := s.refresh.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: rawRefresh}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a
// new pair is issued. Revoked and expired tokens can never rotate.
func (s *SessionService) Refresh(ctx context.Context, rawRefresh, deviceInfo, ipAddress string) (*TokenPair, error) {
	token, err := s.refresh.GetByHash(ctx, hashToken(rawRefresh))
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	if token.RevokedAt != nil {
		return nil, core.ErrTokenRevoked
	}
	if s.now().After(token.ExpiresAt) {
		return nil, core.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, core.ErrInvalidToken
	}

	if err := s.refresh.Revoke(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke old refresh token: %w", err)
	}

	return s.Open(ctx, user, deviceInfo, ipAddress)
}

// Logout revokes a single refresh token. Revoking an already-expired
// token still succeeds.
func (s *SessionService) Logout(ctx context.Context, rawRefresh string) error {
	token, err := s.refresh.GetByHash(ctx, hashToken(rawRefresh))
	if err != nil {
		return core.ErrInvalidToken
	}

	if err := s.refresh.Revoke(ctx, token.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if err := s.events.PublishLogout(ctx, token.UserID.String(), token.ID.String()); err != nil {
		s.logger.Warn("failed to publish logout event", zap.Error(err))
	}
	return nil
}

// LogoutAll revokes every active refresh token of a user.
func (s *SessionService) LogoutAll(ctx context.Context, userID uuid.UUID) (int, error) {
	n, err := s.refresh.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}

	if n > 0 {
		if err := s.events.PublishLogout(ctx, userID.String(), ""); err != nil {
			s.logger.Warn("failed to publish logout event", zap.Error(err))
		}
	}
	return n, nil
}

// Validate parses and validates an access token.
func (s *SessionService) Validate(ctx context.Context, accessToken string) (*core.Session, error) {
	return s.tokenizer.Parse(accessToken)
}
