package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/redis/go-redis/v9"
)

// RedisVerifierStore implements marketplace.VerifierStore using Redis.
// Redis TTLs give the linking window expiry for free, and GETDEL keeps
// the take single-use even with multiple instances.
type RedisVerifierStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ marketplace.VerifierStore = (*RedisVerifierStore)(nil)

// NewRedisVerifierStore creates a verifier store backed by an existing
// Redis client
func NewRedisVerifierStore(client *redis.Client, keyPrefix string) *RedisVerifierStore {
	if keyPrefix == "" {
		keyPrefix = "meli:verifier:"
	}
	return &RedisVerifierStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Put stores the verifier for the user, replacing any previous one.
// The entry expires after marketplace.VerifierTTL.
func (s *RedisVerifierStore) Put(ctx context.Context, userID uuid.UUID, verifier string) error {
	key := s.keyPrefix + userID.String()
	if err := s.client.Set(ctx, key, verifier, marketplace.VerifierTTL).Err(); err != nil {
		return fmt.Errorf("failed to store PKCE verifier: %w", err)
	}
	return nil
}

// Take retrieves and removes the verifier for the user
func (s *RedisVerifierStore) Take(ctx context.Context, userID uuid.UUID) (string, error) {
	key := s.keyPrefix + userID.String()
	verifier, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", marketplace.ErrVerifierNotFound
		}
		return "", fmt.Errorf("failed to take PKCE verifier: %w", err)
	}
	return verifier, nil
}
