package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Storage keeps the session slot in Redis, so several terminals of one
// workstation profile share a login.
type Storage struct {
	client *redis.Client
	prefix string
}

// NewStorage creates a Storage. Keys are namespaced as "<prefix>:session:<key>".
func NewStorage(client *redis.Client, prefix string) *Storage {
	return &Storage{
		client: client,
		prefix: prefix,
	}
}

func (r *Storage) redisKey(key string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, key)
}

// Get implements session.Storage.
func (r *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return val, true, nil
}

// Set implements session.Storage. Values have no expiry.
func (r *Storage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Delete implements session.Storage.
func (r *Storage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}
