package core

import (
	"time"

	"github.com/google/uuid"
)

// AuthType identifies how a session was established.
const (
	AuthTypeStellar  = "stellar-auth"
	AuthTypePassword = "password"
)

// Challenge represents an outstanding wallet authentication challenge.
// Challenges are ephemeral: they live in the challenge store keyed by the
// claimed public key and are consumed on the first verification attempt.
type Challenge struct {
	PublicKey string    // Stellar account the challenge was issued for
	Nonce     string    // Random nonce embedded in the payload, hex encoded
	Payload   string    // Base64 server-signed challenge envelope
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// User is an account known to the service. Email+password and Stellar
// public key are mutually optional identities; a user may carry either
// or both. Empty string means the identity is not set.
type User struct {
	ID               uuid.UUID
	Email            string
	PasswordHash     string
	StellarPublicKey string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResetToken is a one-time password-reset token. Only the SHA-256 hash of
// the raw token is ever persisted.
type ResetToken struct {
	ID        uuid.UUID
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// RefreshToken is a persisted, hashed refresh credential. RevokedAt is set
// on rotation, logout, or logout-all; a revoked token can never be redeemed.
type RefreshToken struct {
	ID         uuid.UUID
	TokenHash  string
	UserID     uuid.UUID
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	DeviceInfo string
	IPAddress  string
	CreatedAt  time.Time
}

// Session is the identity carried by a validated access token.
type Session struct {
	UserID    uuid.UUID
	PublicKey string // set for stellar-auth sessions
	AuthType  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
