package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cha-ryne/ratings-sync/internal/ratings/domain"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "ratings:snapshot:" // Key per store instance: ratings:snapshot:{instance}
	snapshotTTL       = 30 * 24 * time.Hour // Snapshots refresh on every write, stale ones age out
)

// SnapshotRepository persists the canonical ratings collection under one
// namespaced Redis key per store instance, so locally committed ratings
// survive process restarts.
type SnapshotRepository struct {
	client   *redis.Client
	instance string
}

// NewSnapshotRepository creates a SnapshotRepository for the given instance
// namespace. An empty instance falls back to "default".
func NewSnapshotRepository(client *redis.Client, instance string) *SnapshotRepository {
	if instance == "" {
		instance = "default"
	}
	return &SnapshotRepository{client: client, instance: instance}
}

// Save overwrites the stored snapshot with the given collection.
func (r *SnapshotRepository) Save(ctx context.Context, c domain.Collection) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, r.snapshotKey(), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the stored snapshot, or domain.ErrSnapshotNotFound when no
// snapshot has been written yet.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.Collection, error) {
	data, err := r.client.Get(ctx, r.snapshotKey()).Result()
	if err == redis.Nil {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var c domain.Collection
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return c, nil
}

func (r *SnapshotRepository) snapshotKey() string {
	return fmt.Sprintf("%s%s", snapshotKeyPrefix, r.instance)
}
