package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appcrm "github.com/melihub/backend/internal/application/crm"
	"github.com/melihub/backend/internal/domain/crm"
	"github.com/redis/go-redis/v9"
)

// SummaryTTL bounds how stale a cached customer list can get before
// readers fall back to bare persisted rows.
const SummaryTTL = 15 * time.Minute

// RedisSummaryCache implements the customer summary cache using Redis.
// Each user's full summary list is stored as one JSON blob; a sync run
// always replaces the whole list.
type RedisSummaryCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

var _ appcrm.SummaryCache = (*RedisSummaryCache)(nil)

// NewRedisSummaryCache creates a summary cache backed by an existing
// Redis client
func NewRedisSummaryCache(client *redis.Client, keyPrefix string) *RedisSummaryCache {
	if keyPrefix == "" {
		keyPrefix = "crm:summaries:"
	}
	return &RedisSummaryCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       SummaryTTL,
	}
}

// Put replaces the cached summaries for a user
func (c *RedisSummaryCache) Put(ctx context.Context, userID uuid.UUID, summaries []crm.CustomerSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to encode customer summaries: %w", err)
	}

	key := c.keyPrefix + userID.String()
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache customer summaries: %w", err)
	}
	return nil
}

// Get returns the cached summaries, ok=false on a miss
func (c *RedisSummaryCache) Get(ctx context.Context, userID uuid.UUID) ([]crm.CustomerSummary, bool, error) {
	key := c.keyPrefix + userID.String()
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached customer summaries: %w", err)
	}

	var summaries []crm.CustomerSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		// Corrupt entry counts as a miss
		return nil, false, nil
	}
	return summaries, true, nil
}
