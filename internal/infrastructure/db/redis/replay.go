package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

const (
	defaultReplayTTL = 24 * time.Hour
	// pendingTTL bounds how long a crashed request can hold its key.
	pendingTTL   = time.Minute
	pendingValue = "pending"
)

// ReplayCache remembers the result of keyed stock changes so a retried
// request gets the first answer back instead of moving stock twice.
// Key format: idem:<action>:<item_id>:<idempotency_key>
type ReplayCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReplayCache creates a ReplayCache wrapping the given Redis client.
func NewReplayCache(client *redis.Client, ttl time.Duration) *ReplayCache {
	if ttl <= 0 {
		ttl = defaultReplayTTL
	}
	return &ReplayCache{client: client, ttl: ttl}
}

// Reserve claims the key for the caller. It reports false when another
// request already holds the key or has stored its result.
func (c *ReplayCache) Reserve(ctx context.Context, action, itemID, key string) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.key(action, itemID, key), pendingValue, pendingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("replay reserve: %w", err)
	}
	return ok, nil
}

// Lookup returns the remembered item for this key, if any. A key that is
// only reserved is reported as a miss.
func (c *ReplayCache) Lookup(ctx context.Context, action, itemID, key string) (*domain.Item, bool, error) {
	raw, err := c.client.Get(ctx, c.key(action, itemID, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("replay lookup: %w", err)
	}
	if string(raw) == pendingValue {
		return nil, false, nil
	}

	var item domain.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, false, fmt.Errorf("replay decode: %w", err)
	}
	return &item, true, nil
}

// Remember stores the outcome for this key (expires after ttl).
func (c *ReplayCache) Remember(ctx context.Context, action, itemID, key string, item *domain.Item) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("replay encode: %w", err)
	}
	return c.client.Set(ctx, c.key(action, itemID, key), raw, c.ttl).Err()
}

// Release drops a reservation whose stock change failed so the key can be
// retried.
func (c *ReplayCache) Release(ctx context.Context, action, itemID, key string) error {
	if err := c.client.Del(ctx, c.key(action, itemID, key)).Err(); err != nil {
		return fmt.Errorf("replay release: %w", err)
	}
	return nil
}

func (c *ReplayCache) key(action, itemID, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", action, itemID, key)
}
