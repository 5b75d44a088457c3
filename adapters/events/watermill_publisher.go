package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/lumenpulse/anchor/ports"
)

// Topics published by the auth service.
const (
	TopicWalletLogin   = "anchor.wallet_login"
	TopicPasswordReset = "anchor.password_reset"
	TopicLogout        = "anchor.logout"
)

// WalletLoginEvent is emitted after a successful challenge verification.
type WalletLoginEvent struct {
	UserID    string `json:"user_id"`
	PublicKey string `json:"public_key"`
}

// PasswordResetEvent is emitted after a password has been reset.
type PasswordResetEvent struct {
	UserID string `json:"user_id"`
}

// LogoutEvent is emitted when a refresh token is revoked.
type LogoutEvent struct {
	UserID  string `json:"user_id"`
	TokenID string `json:"token_id"`
}

// WatermillPublisher implements the EventPublisher port using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishWalletLogin publishes a wallet login event.
func (p *WatermillPublisher) PublishWalletLogin(ctx context.Context, userID, publicKey string) error {
	return p.publish(TopicWalletLogin, WalletLoginEvent{UserID: userID, PublicKey: publicKey})
}

// PublishPasswordReset publishes a password reset event.
func (p *WatermillPublisher) PublishPasswordReset(ctx context.Context, userID string) error {
	return p.publish(TopicPasswordReset, PasswordResetEvent{UserID: userID})
}

// PublishLogout publishes a logout event.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, tokenID string) error {
	return p.publish(TopicLogout, LogoutEvent{UserID: userID, TokenID: tokenID})
}

func (p *WatermillPublisher) publish(topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)
	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
