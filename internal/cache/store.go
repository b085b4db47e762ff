package cache

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/stores/redis"
)

// Store persists opaque encoded values with a TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// MemoryStore is an in-process Store backed by go-zero's TTL cache.
type MemoryStore struct {
	cache *collection.Cache
}

// NewMemoryStore builds an in-process store. defaultTTL applies to entries
// set with a non-positive ttl.
func NewMemoryStore(name string, defaultTTL time.Duration) (*MemoryStore, error) {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	c, err := collection.NewCache(defaultTTL, collection.WithName(name))
	if err != nil {
		return nil, err
	}
	return &MemoryStore{cache: c}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		m.cache.Set(key, val)
		return nil
	}
	m.cache.SetWithExpire(key, val, ttl)
	return nil
}

// RedisStore shares cached values across instances through redis.
type RedisStore struct {
	rds *redis.Redis
}

// NewRedisStore wraps an existing go-zero redis client.
func NewRedisStore(rds *redis.Redis) *RedisStore {
	return &RedisStore{rds: rds}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rds.GetCtx(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	return r.rds.SetexCtx(ctx, key, string(val), seconds)
}
