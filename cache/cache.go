// Package cache holds byte caches for person records and a db.Repository
// decorator that reads through them.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}

// LocalStore is an in-process ristretto cache. Sets are applied
// asynchronously; Wait blocks until pending sets are visible.
type LocalStore struct {
	cache *ristretto.Cache
}

// NewLocalStore holds up to maxBytes of values. maxItems is the expected
// number of entries and sizes the admission counters, ten per entry.
func NewLocalStore(maxItems, maxBytes int64) (*LocalStore, error) {
	c, err := ristretto.NewCache(localConfig(maxItems, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &LocalStore{cache: c}, nil
}

func localConfig(maxItems, maxBytes int64) *ristretto.Config {
	return &ristretto.Config{
		NumCounters: maxItems * 10,
		MaxCost:     maxBytes,
		BufferItems: 64,
	}
}

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (s *LocalStore) Set(_ context.Context, key string, value []byte) {
	s.cache.Set(key, value, int64(len(value)))
}

func (s *LocalStore) Wait() {
	s.cache.Wait()
}

func (s *LocalStore) Close() {
	s.cache.Close()
}

// RedisStore shares cached entries between service instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.WarnContext(ctx, "redis get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.log.WarnContext(ctx, "redis set failed", "key", key, "error", err)
	}
}
