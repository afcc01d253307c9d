// Package cache keeps a short-lived Redis snapshot of item availability so
// hot listing endpoints do not hit the primary store on every request. The
// cache is strictly optional: a nil cache answers nothing and stores nothing.
package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	platformredis "locadora/internal/platform/redis"
	"locadora/pkg/domain"
)

const keyPrefix = "locadora:availability:"

type AvailabilityCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

// New returns nil when no Redis client is configured; all methods tolerate a
// nil receiver.
func New(client *platformredis.Client, ttl time.Duration) *AvailabilityCache {
	if client == nil {
		return nil
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// Get returns the cached availability and whether it was present.
func (c *AvailabilityCache) Get(ctx context.Context, id domain.ItemID) (int, bool) {
	if c == nil {
		return 0, false
	}
	n, err := c.client.Get(ctx, keyPrefix+id.String()).Int()
	if err != nil {
		return 0, false
	}
	return n, true
}

// Set stores the availability snapshot with the configured TTL. Failures are
// swallowed; the cache never blocks the read path.
func (c *AvailabilityCache) Set(ctx context.Context, id domain.ItemID, available int) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, keyPrefix+id.String(), available, c.ttl).Err()
}

// Invalidate drops the snapshot after a reserve or release changed it.
func (c *AvailabilityCache) Invalidate(ctx context.Context, id domain.ItemID) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, keyPrefix+id.String()).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return err
	}
	return nil
}
