package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tab-sweeper/domain/model"
	"tab-sweeper/infrastructure/logger"
)

// SnapshotKey is the single Redis key the whole video snapshot lives under.
const SnapshotKey = "tabsweeper:videos"

// VideoSnapshotCache persists the video metadata snapshot as one JSON blob
// under one key. The collection is always read and written wholesale; entry
// expiry is the resolver's prune step, not per-key Redis TTLs.
type VideoSnapshotCache struct {
	client *redis.Client
}

func NewVideoSnapshotCache(client *redis.Client) *VideoSnapshotCache {
	return &VideoSnapshotCache{client: client}
}

// Load reads the persisted snapshot. A missing key yields an empty snapshot.
func (c *VideoSnapshotCache) Load(ctx context.Context) (model.VideoSnapshot, error) {
	raw, err := c.client.Get(ctx, SnapshotKey).Bytes()
	if err == redis.Nil {
		return model.VideoSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load video snapshot: %w", err)
	}
	var snapshot model.VideoSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode video snapshot: %w", err)
	}
	logger.GetLogger().WithField("entries", len(snapshot)).Debug("Video snapshot loaded")
	return snapshot, nil
}

// Save overwrites the persisted snapshot in one SET.
func (c *VideoSnapshotCache) Save(ctx context.Context, snapshot model.VideoSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode video snapshot: %w", err)
	}
	if err := c.client.Set(ctx, SnapshotKey, raw, 0).Err(); err != nil {
		return fmt.Errorf("save video snapshot: %w", err)
	}
	logger.GetLogger().WithField("entries", len(snapshot)).Debug("Video snapshot saved")
	return nil
}

// Clear removes the persisted snapshot.
func (c *VideoSnapshotCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, SnapshotKey).Err(); err != nil {
		return fmt.Errorf("clear video snapshot: %w", err)
	}
	return nil
}
