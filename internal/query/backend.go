package query

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-client/pkg/logger"
)

// ErrBackendMiss is returned by a Backend when a key has no value.
var ErrBackendMiss = errors.New("query: backend miss")

// Backend is an optional second cache level behind the in-memory entries.
// It lets a fresh process warm-start from payloads fetched by an earlier
// one. All calls are best-effort: a failing backend degrades to plain
// in-memory caching.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// DeletePrefix removes the key and every parameterized key under it.
	DeletePrefix(ctx context.Context, prefix string) error
}

const backendPrefix = "socialq:"

// RedisBackend stores payloads as JSON strings with a TTL, one redis key
// per cache key.
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

var _ Backend = (*RedisBackend)(nil)

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.rdb.Get(ctx, backendPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBackendMiss
	}
	return data, err
}

func (b *RedisBackend) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return b.rdb.Set(ctx, backendPrefix+key, payload, ttl).Err()
}

func (b *RedisBackend) DeletePrefix(ctx context.Context, prefix string) error {
	pipe := b.rdb.Pipeline()
	pipe.Del(ctx, backendPrefix+prefix)
	keys, err := b.rdb.Keys(ctx, backendPrefix+prefix+":*").Result()
	if err == nil && len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// backendLookup reads a payload from the second level, if configured.
func (s *Store) backendLookup(ctx context.Context, key Key) ([]byte, bool) {
	if s.backend == nil {
		return nil, false
	}
	data, err := s.backend.Get(ctx, string(key))
	if err != nil {
		if !errors.Is(err, ErrBackendMiss) {
			logger.Debug("cache backend get failed", zap.String("key", string(key)), zap.Error(err))
		}
		return nil, false
	}
	return data, true
}

func (s *Store) backendStore(ctx context.Context, key Key, value any) {
	if s.backend == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.backend.Set(ctx, string(key), payload, s.backendTTL); err != nil {
		logger.Debug("cache backend set failed", zap.String("key", string(key)), zap.Error(err))
	}
}

func (s *Store) backendInvalidate(ctx context.Context, keys []Key) {
	if s.backend == nil {
		return
	}
	for _, k := range keys {
		if err := s.backend.DeletePrefix(ctx, string(k)); err != nil {
			logger.Debug("cache backend delete failed", zap.String("key", string(k)), zap.Error(err))
		}
	}
}
