package studyctx

import (
	"context"
	"errors"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps contexts in Redis without expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return raw, err
}

func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return s.rdb.Set(ctx, key, data, 0).Err()
}

// MemoryStore is the single-instance fallback used when Redis is down.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	if x, found := s.cache.Get(key); found {
		return x.([]byte), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.cache.Set(key, data, cache.NoExpiration)
	return nil
}
