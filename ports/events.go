package ports

import "context"

// EventPublisher notifies other services about authentication events.
// Publish failures must never fail the request that triggered them.
type EventPublisher interface {
	PublishWalletLogin(ctx context.Context, userID, publicKey string) error
	PublishPasswordReset(ctx context.Context, userID string) error
	PublishLogout(ctx context.Context, userID, tokenID string) error
}
