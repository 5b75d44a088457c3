package ports

import (
	"context"

	"github.com/lumenpulse/anchor/core"
)

// ChallengeStore keeps outstanding wallet-auth challenges keyed by the
// claimed public key. Implementations must be safe for concurrent use:
// verification and the expiry sweep run alongside request handling.
type ChallengeStore interface {
	// Get returns the challenge stored for publicKey, or core.ErrChallengeNotFound.
	Get(ctx context.Context, publicKey string) (*core.Challenge, error)

	// Consume atomically removes and returns the challenge for publicKey,
	// or core.ErrChallengeNotFound. Of any number of concurrent callers
	// for the same key, exactly one receives the challenge.
	Consume(ctx context.Context, publicKey string) (*core.Challenge, error)

	// Set stores a challenge under its public key, replacing any prior entry.
	Set(ctx context.Context, challenge *core.Challenge) error

	// Delete removes the challenge for publicKey. Deleting a missing key is not an error.
	Delete(ctx context.Context, publicKey string) error

	// SweepExpired evicts entries past their expiry and returns how many were removed.
	SweepExpired(ctx context.Context) (int, error)
}
