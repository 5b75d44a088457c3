package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenpulse/anchor/core"
)

func newChallenge(publicKey string, expiresAt time.Time) *core.Challenge {
	return &core.Challenge{
		PublicKey: publicKey,
		Nonce:     "nonce-" + publicKey,
		Payload:   "payload",
		IssuedAt:  expiresAt.Add(-5 * time.Minute),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "GKEY")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)

	c := newChallenge("GKEY", time.Now().Add(5*time.Minute))
	require.NoError(t, s.Set(ctx, c))

	got, err := s.Get(ctx, "GKEY")
	require.NoError(t, err)
	require.Equal(t, c.Nonce, got.Nonce)

	// Returned value is a copy; mutating it must not affect the store.
	got.Nonce = "mutated"
	again, err := s.Get(ctx, "GKEY")
	require.NoError(t, err)
	require.Equal(t, c.Nonce, again.Nonce)

	require.NoError(t, s.Delete(ctx, "GKEY"))
	_, err = s.Get(ctx, "GKEY")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestMemoryStore_ConsumeRemovesEntry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Consume(ctx, "GKEY")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)

	c := newChallenge("GKEY", time.Now().Add(5*time.Minute))
	require.NoError(t, s.Set(ctx, c))

	got, err := s.Consume(ctx, "GKEY")
	require.NoError(t, err)
	require.Equal(t, c.Nonce, got.Nonce)

	_, err = s.Get(ctx, "GKEY")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}

func TestMemoryStore_ConcurrentConsumeHasOneWinner(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, newChallenge("GKEY", time.Now().Add(5*time.Minute))))

	const attempts = 16
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Consume(ctx, "GKEY")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for err := range results {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, core.ErrChallengeNotFound)
		}
	}
	require.Equal(t, 1, winners)

	// Deleting a missing key is not an error.
	require.NoError(t, s.Delete(ctx, "GKEY"))
}

func TestMemoryStore_SetReplacesPriorEntry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first := newChallenge("GKEY", time.Now().Add(5*time.Minute))
	second := newChallenge("GKEY", time.Now().Add(5*time.Minute))
	second.Nonce = "fresh"

	require.NoError(t, s.Set(ctx, first))
	require.NoError(t, s.Set(ctx, second))

	got, err := s.Get(ctx, "GKEY")
	require.NoError(t, err)
	require.Equal(t, "fresh", got.Nonce)
	require.Equal(t, 1, s.Len())
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, newChallenge("GLIVE", now.Add(time.Minute))))
	require.NoError(t, s.Set(ctx, newChallenge("GDEAD1", now.Add(-time.Second))))
	require.NoError(t, s.Set(ctx, newChallenge("GDEAD2", now.Add(-time.Hour))))

	removed, err := s.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.Equal(t, 1, s.Len())

	_, err = s.Get(ctx, "GLIVE")
	require.NoError(t, err)
	_, err = s.Get(ctx, "GDEAD1")
	require.ErrorIs(t, err, core.ErrChallengeNotFound)
}
