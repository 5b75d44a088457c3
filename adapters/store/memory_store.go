package store

import (
	"context"
	"sync"
	"time"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

// MemoryStore is an in-memory implementation of the ChallengeStore.
// Challenges are volatile and lost on restart; clients simply re-request.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]*core.Challenge
	now        func() time.Time
}

// NewMemoryStore creates a new in-memory challenge store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]*core.Challenge),
		now:        time.Now,
	}
}

var _ ports.ChallengeStore = (*MemoryStore)(nil)

// Get returns the challenge stored for publicKey.
func (s *MemoryStore) Get(ctx context.Context, publicKey string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[publicKey]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	cpy := *c
	return &cpy, nil
}

// Consume removes and returns the challenge for publicKey. Removal and
// return happen under one mutex hold, so concurrent consumers of the same
// key cannot both receive the challenge.
func (s *MemoryStore) Consume(ctx context.Context, publicKey string) (*core.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[publicKey]
	if !ok {
		return nil, core.ErrChallengeNotFound
	}
	delete(s.challenges, publicKey)
	cpy := *c
	return &cpy, nil
}

// Set stores a challenge, replacing any prior entry for the same key.
func (s *MemoryStore) Set(ctx context.Context, challenge *core.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cpy := *challenge
	s.challenges[challenge.PublicKey] = &cpy
	return nil
}

// Delete removes the challenge for publicKey.
func (s *MemoryStore) Delete(ctx context.Context, publicKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, publicKey)
	return nil
}

// SweepExpired evicts every challenge past its expiry.
func (s *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, c := range s.challenges {
		if now.After(c.ExpiresAt) {
			delete(s.challenges, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored challenges.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}
