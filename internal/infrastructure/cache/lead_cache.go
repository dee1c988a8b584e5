package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeadCache caches assembled lead context summaries so rapid follow-up
// questions about the same lead do not re-fetch the CRM.
type LeadCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewLeadCache creates a lead context cache with the given TTL
func NewLeadCache(client *redis.Client, ttl time.Duration) *LeadCache {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &LeadCache{
		client:    client,
		keyPrefix: "lead_data:",
		ttl:       ttl,
	}
}

// Get returns the cached lead summary, or ("", false, nil) on a miss
func (c *LeadCache) Get(ctx context.Context, personID string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+personID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

// Set stores a lead summary for the configured TTL
func (c *LeadCache) Set(ctx context.Context, personID, summary string) error {
	return c.client.Set(ctx, c.keyPrefix+personID, summary, c.ttl).Err()
}

// Invalidate drops the cached summary for a lead
func (c *LeadCache) Invalidate(ctx context.Context, personID string) error {
	return c.client.Del(ctx, c.keyPrefix+personID).Err()
}
