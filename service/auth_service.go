// Package service contains the application services for wallet challenge
// authentication, account management and session handling.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/internal/stellar"
	"github.com/lumenpulse/anchor/ports"
)

// DefaultChallengeTTL is how long a wallet challenge stays redeemable.
const DefaultChallengeTTL = 5 * time.Minute

// ChallengeResult is the response to a challenge request.
type ChallengeResult struct {
	Challenge string `json:"challenge"`
	Nonce     string `json:"nonce"`
	ExpiresIn int    `json:"expiresIn"`
}

// UserSummary is the minimal user projection returned after verification.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// VerifyResult is the response to a successful challenge verification.
type VerifyResult struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// AuthService handles the wallet challenge/response flow: it issues
// server-signed challenges and exchanges correctly signed responses for
// session tokens.
type AuthService struct {
	store     ports.ChallengeStore
	users     ports.UserRepository
	tokenizer ports.Tokenizer
	events    ports.EventPublisher
	logger    *zap.Logger

	serverKey  *stellar.Keypair
	homeDomain string
	network    string

	challengeTTL time.Duration
	now          func() time.Time
}

// NewAuthService constructs the wallet authentication service. network is
// a Stellar network passphrase; the server keypair signs every challenge.
func NewAuthService(
	store ports.ChallengeStore,
	users ports.UserRepository,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	serverKey *stellar.Keypair,
	homeDomain string,
	network string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		store:        store,
		users:        users,
		tokenizer:    tokenizer,
		events:       events,
		logger:       logger,
		serverKey:    serverKey,
		homeDomain:   homeDomain,
		network:      network,
		challengeTTL: DefaultChallengeTTL,
		now:          time.Now,
	}
}

// GenerateChallenge issues a fresh server-signed challenge for the claimed
// public key, replacing any outstanding challenge for the same key.
func (s *AuthService) GenerateChallenge(ctx context.Context, publicKey string) (*ChallengeResult, error) {
	if !stellar.IsValidPublicKey(publicKey) {
		return nil, core.ErrInvalidPublicKey
	}

	nonce, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now()
	env, err := stellar.BuildChallenge(s.serverKey, publicKey, s.homeDomain, s.network, nonce, now, s.challengeTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge: %w", err)
	}

	payload, err := env.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode challenge: %w", err)
	}

	challenge := &core.Challenge{
		PublicKey: publicKey,
		Nonce:     nonce,
		Payload:   payload,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
	}
	if err := s.store.Set(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	s.logger.Debug("challenge generated", zap.String("public_key", publicKey))

	return &ChallengeResult{
		Challenge: payload,
		Nonce:     nonce,
		ExpiresIn: int(s.challengeTTL.Seconds()),
	}, nil
}

// VerifyChallenge checks a signed challenge response. The stored challenge
// is consumed atomically up front, so of any number of concurrent attempts
// for the same key exactly one sees the challenge, and no attempt can be
// retried.
func (s *AuthService) VerifyChallenge(ctx context.Context, publicKey, signedChallenge string) (*VerifyResult, error) {
	stored, err := s.store.Consume(ctx, publicKey)
	if err != nil {
		return nil, core.ErrChallengeNotFound
	}

	if s.now().After(stored.ExpiresAt) {
		return nil, core.ErrChallengeExpired
	}

	env, err := stellar.DecodeEnvelope(signedChallenge)
	if err != nil {
		return nil, core.ErrMalformedChallenge
	}

	pub, err := stellar.DecodePublicKey(publicKey)
	if err != nil {
		return nil, core.ErrInvalidPublicKey
	}

	hash, err := env.Hash(s.network)
	if err != nil {
		return nil, core.ErrMalformedChallenge
	}

	if !stellar.VerifyAny(hash[:], env.Signatures, pub) {
		return nil, core.ErrInvalidSignature
	}

	user, err := s.findOrCreateUser(ctx, publicKey)
	if err != nil {
		return nil, err
	}

	token, err := s.tokenizer.Issue(&core.Session{
		UserID:    user.ID,
		PublicKey: publicKey,
		AuthType:  core.AuthTypeStellar,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	if err := s.events.PublishWalletLogin(ctx, user.ID.String(), publicKey); err != nil {
		s.logger.Warn("failed to publish wallet login event", zap.Error(err))
	}

	return &VerifyResult{
		Success: true,
		Token:   token,
		User:    UserSummary{ID: user.ID, CreatedAt: user.CreatedAt},
	}, nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, publicKey string) (*core.User, error) {
	now := s.now()

	user, err := s.users.GetByPublicKey(ctx, publicKey)
	switch {
	case err == nil:
		user.UpdatedAt = now
		if err := s.users.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to refresh user: %w", err)
		}
		s.logger.Info("existing user logged in", zap.String("user_id", user.ID.String()))
		return user, nil
	case !errors.Is(err, core.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	user = &core.User{
		ID:               uuid.New(),
		StellarPublicKey: publicKey,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("new user created", zap.String("public_key", publicKey))
	return user, nil
}

// randomHex returns n cryptographically random bytes, hex encoded.
func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
