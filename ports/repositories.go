package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lumenpulse/anchor/core"
)

// UserRepository is the persistent user directory.
type UserRepository interface {
	// Create inserts a new user. Returns core.ErrEmailTaken on a unique
	// violation of either identity column.
	Create(ctx context.Context, u *core.User) error

	// GetByID loads a user by ID, or core.ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*core.User, error)

	// GetByEmail loads a user by normalized email, or core.ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (*core.User, error)

	// GetByPublicKey loads a user by Stellar public key, or core.ErrUserNotFound.
	GetByPublicKey(ctx context.Context, publicKey string) (*core.User, error)

	// Save persists mutable fields (password hash, updated_at) of an existing user.
	Save(ctx context.Context, u *core.User) error
}

// ResetTokenRepository stores hashed one-time password-reset tokens.
type ResetTokenRepository interface {
	// Create inserts a new reset token row.
	Create(ctx context.Context, t *core.ResetToken) error

	// GetUnusedByHash returns the unused token matching tokenHash,
	// or core.ErrInvalidResetToken.
	GetUnusedByHash(ctx context.Context, tokenHash string) (*core.ResetToken, error)

	// MarkUsed sets used_at for the given token.
	MarkUsed(ctx context.Context, id uuid.UUID) error

	// InvalidateForUser marks all currently-unused tokens of a user as used
	// and returns how many rows were affected.
	InvalidateForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// RefreshTokenRepository stores hashed refresh tokens.
type RefreshTokenRepository interface {
	// Create inserts a new refresh token row.
	Create(ctx context.Context, t *core.RefreshToken) error

	// GetByHash returns the token matching tokenHash regardless of state,
	// or core.ErrInvalidToken.
	GetByHash(ctx context.Context, tokenHash string) (*core.RefreshToken, error)

	// Revoke sets revoked_at for the given token.
	Revoke(ctx context.Context, id uuid.UUID) error

	// RevokeAllForUser revokes every active token of a user and returns
	// how many rows were affected.
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int, error)
}
