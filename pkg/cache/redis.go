package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
)

const redisKeyPrefix = "catalog:product:"

// RedisStore is an alternative Store backend for deployments that already
// run redis. Entries are stored without a server-side TTL: staleness is a
// read-side rule and stale entries remain until overwritten, matching the
// FileStore lifecycle.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: client}
}

// Get returns the entry for id if it exists and is fresh.
func (s *RedisStore) Get(ctx context.Context, id string) (*Entry, error) {
	data, err := s.redis.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if !entry.Fresh(time.Now()) {
		CacheStale.WithLabelValues("redis").Inc()
		return nil, ErrCacheMiss
	}
	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Put overwrites the entry for id with a fresh timestamp.
func (s *RedisStore) Put(ctx context.Context, id string, detail catalog.ProductDetail) error {
	entry := Entry{Product: detail, UpdatedAt: time.Now()}

	data, err := json.Marshal(&entry)
	if err != nil {
		CacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := s.redis.Set(ctx, redisKeyPrefix+id, data, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
