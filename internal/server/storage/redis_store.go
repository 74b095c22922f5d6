// Package storage mirrors room state into Redis for observability. The
// mirror is write-through and best effort: the in-memory coordinator is
// the source of truth and keeps working when Redis is down.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	roomKeyPrefix = "room:"

	// rooms that somehow escape deletion still expire
	roomExpiration = 2 * time.Hour
)

// RoomRecord is the serialized room snapshot.
type RoomRecord struct {
	Code        string   `json:"code"`
	Namespace   string   `json:"namespace"`
	HasPassword bool     `json:"has_password"`
	PlayerNames []string `json:"player_names"`
	GameState   string   `json:"game_state,omitempty"`
	CreatedAt   int64    `json:"created_at"`
}

// RedisStore mirrors rooms into Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Ping checks connectivity.
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// SaveRoom writes a room snapshot.
func (rs *RedisStore) SaveRoom(ctx context.Context, record *RoomRecord) error {
	if record == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize room record: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+record.Code, data, roomExpiration).Err()
}

// LoadRoom reads a room snapshot. A missing room returns nil, nil.
func (rs *RedisStore) LoadRoom(ctx context.Context, code string) (*RoomRecord, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var record RoomRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to deserialize room record: %w", err)
	}
	return &record, nil
}

// DeleteRoom removes a room snapshot.
func (rs *RedisStore) DeleteRoom(ctx context.Context, code string) error {
	return rs.client.Del(ctx, roomKeyPrefix+code).Err()
}

// ListRoomCodes returns the codes of all mirrored rooms.
func (rs *RedisStore) ListRoomCodes(ctx context.Context) ([]string, error) {
	keys, err := rs.client.Keys(ctx, roomKeyPrefix+"*").Result()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(keys))
	for i, key := range keys {
		codes[i] = key[len(roomKeyPrefix):]
	}
	return codes, nil
}
