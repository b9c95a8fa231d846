// Package cache holds the Redis-backed stores.
package cache

import (
	"context"
	"errors"
	"time"

	"marketplace/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore keeps idempotency locks and results in Redis. Both keys expire
// after ttl, so a crashed request frees its key eventually.
//
// Example:
//
//	store := NewRedisIdempotencyStore(rdb, 24*time.Hour)
//	ok, err := store.TryLock(ctx, "checkout", key)
//	if ok {
//		defer store.Release(ctx, "checkout", key)
//	}
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisIdempotencyStore creates a store whose keys live for ttl.
func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func lockKey(scope, key string) string {
	return "idemp:" + scope + ":" + key
}

func valueKey(scope, key string) string {
	return "idemp:map:" + scope + ":" + key
}

// TryLock reports true when the caller now holds the key. It uses SET NX.
func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(scope, key), "1", s.ttl).Result()
}

// Remember stores the response produced for the key.
func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, valueKey(scope, key), value, s.ttl).Err()
}

// Recall returns the stored response. A missing key is reported as false, not as an error.
func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, valueKey(scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Release drops the lock but keeps any remembered response.
func (s *RedisIdempotencyStore) Release(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, lockKey(scope, key)).Err()
}

var _ ports.IdempotencyStore = (*RedisIdempotencyStore)(nil)
