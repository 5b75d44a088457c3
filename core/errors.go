package core

import "errors"

var (
	// Wallet challenge lifecycle.
	ErrInvalidPublicKey   = errors.New("invalid stellar public key")
	ErrChallengeNotFound  = errors.New("no challenge found for this public key")
	ErrChallengeExpired   = errors.New("challenge has expired")
	ErrMalformedChallenge = errors.New("invalid challenge format")
	ErrInvalidSignature   = errors.New("invalid signature")

	// Password and registration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	// Password reset lifecycle.
	ErrInvalidResetToken = errors.New("invalid or already-used reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")

	// Session tokens.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenRevoked = errors.New("token has been revoked")
)
