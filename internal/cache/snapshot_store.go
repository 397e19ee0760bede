package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/store"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore keeps one redis hash per slot, holding the snapshot
// version next to the encoded state so stale schemas are detected without
// decoding the payload.
type RedisSnapshotStore struct {
	client *redis.Client
}

func NewRedisSnapshotStore(client *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: client,
	}
}

func (s *RedisSnapshotStore) key(slot string) string {
	return fmt.Sprintf("snapshot:%s", slot)
}

func (s *RedisSnapshotStore) Save(ctx context.Context, slot string, state interface{}) error {
	raw, err := store.EncodeSnapshot(state)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key(slot), map[string]interface{}{
		"version": store.SnapshotVersion,
		"data":    string(raw),
	}).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context, slot string, state interface{}) error {
	result, err := s.client.HGetAll(ctx, s.key(slot)).Result()
	if err != nil {
		return err
	}
	if len(result) == 0 {
		return apperrors.ErrSnapshotNotFound
	}

	version, err := strconv.Atoi(result["version"])
	if err != nil {
		return fmt.Errorf("invalid snapshot version: %w", err)
	}
	if version != store.SnapshotVersion {
		return apperrors.ErrSnapshotVersion
	}

	return store.DecodeSnapshot([]byte(result["data"]), state)
}

func (s *RedisSnapshotStore) Delete(ctx context.Context, slot string) error {
	return s.client.Del(ctx, s.key(slot)).Err()
}
