package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Snapshot is one atomic read of all three tabs, header rows removed.
type Snapshot struct {
	ID        string          `json:"id"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Input     [][]interface{} `json:"input"`
	Contacts  [][]interface{} `json:"contacts"`
	Settings  [][]interface{} `json:"settings"`
}

// SnapshotCache holds the last loaded snapshot until it expires or is invalidated.
// Get returns (nil, nil) on a miss.
type SnapshotCache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot) error
	Invalidate(ctx context.Context) error
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context) (*Snapshot, error) { return nil, nil }
func (NopCache) Set(context.Context, *Snapshot) error   { return nil }
func (NopCache) Invalidate(context.Context) error       { return nil }

// RedisSnapshotCache stores the snapshot as JSON under a single key.
type RedisSnapshotCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

func NewRedisSnapshotCache(client redis.Cmdable, key string, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, key: key, ttl: ttl}
}

func (c *RedisSnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return &snap, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.key, err)
	}
	return nil
}
