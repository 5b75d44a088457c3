package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumenpulse/anchor/core"
	"github.com/lumenpulse/anchor/ports"
)

// RedisStore is a Redis implementation of the ChallengeStore, for running
// more than one instance behind a load balancer.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis challenge store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "anchor:challenge:",
	}
}

var _ ports.ChallengeStore = (*RedisStore)(nil)

// Get returns the challenge stored for publicKey.
func (s *RedisStore) Get(ctx context.Context, publicKey string) (*core.Challenge, error) {
	raw, err := s.client.Get(ctx, s.prefix+publicKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	var c core.Challenge
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &c, nil
}

// Consume removes and returns the challenge for publicKey. GETDEL is a
// single Redis command, so concurrent consumers of the same key cannot
// both receive the challenge.
func (s *RedisStore) Consume(ctx context.Context, publicKey string) (*core.Challenge, error) {
	raw, err := s.client.GetDel(ctx, s.prefix+publicKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, core.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to consume challenge: %w", err)
	}

	var c core.Challenge
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal challenge: %w", err)
	}
	return &c, nil
}

// Set stores a challenge with a TTL matching its expiry, replacing any
// prior entry for the same key.
func (s *RedisStore) Set(ctx context.Context, challenge *core.Challenge) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal challenge: %w", err)
	}

	ttl := time.Until(challenge.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := s.client.Set(ctx, s.prefix+challenge.PublicKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}
	return nil
}

// Delete removes the challenge for publicKey.
func (s *RedisStore) Delete(ctx context.Context, publicKey string) error {
	if err := s.client.Del(ctx, s.prefix+publicKey).Err(); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	return nil
}

// SweepExpired is a no-op: Redis evicts challenges itself via key TTLs.
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}
