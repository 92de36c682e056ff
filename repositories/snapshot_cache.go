package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"snack-shop/models"

	"github.com/redis/go-redis/v9"
)

type CachedSnapshot struct {
	SavedAt time.Time      `json:"saved_at"`
	Orders  []models.Order `json:"orders"`
}

// SnapshotCache mirrors the latest order collection into Redis under a
// fixed key. A nil client turns every call into a no-op.
type SnapshotCache struct {
	client *redis.Client
	key    string
}

func NewSnapshotCache(client *redis.Client, key string) *SnapshotCache {
	return &SnapshotCache{client: client, key: key}
}

func (c *SnapshotCache) Save(ctx context.Context, orders []models.Order) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(CachedSnapshot{SavedAt: time.Now(), Orders: orders})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, payload, 0).Err()
}

func (c *SnapshotCache) Load(ctx context.Context) (*CachedSnapshot, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap CachedSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *SnapshotCache) SaveAutoPrint(ctx context.Context, enabled bool) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key+":auto_print", strconv.FormatBool(enabled), 0).Err()
}

// LoadAutoPrint reports ok=false when no value has been stored.
func (c *SnapshotCache) LoadAutoPrint(ctx context.Context) (enabled bool, ok bool, err error) {
	if c == nil || c.client == nil {
		return false, false, nil
	}
	raw, err := c.client.Get(ctx, c.key+":auto_print").Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	enabled, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, nil
	}
	return enabled, true, nil
}
