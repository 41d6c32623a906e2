// Package cache is a Redis-backed read-through cache for JSON-encodable
// values. A Store without a client is a valid, always-missing cache, so the
// application runs unchanged when Redis is not configured or unreachable.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradebridge/tradebridge/pkg/logger"
	"github.com/tradebridge/tradebridge/pkg/metrics"
)

const driver = "redis"

// Store wraps a Redis client. The zero value and a nil *Store are disabled.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a Store on rdb. Keys are namespaced with prefix.
func New(rdb *redis.Client, prefix string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Connect initialises the Redis client and verifies the connection with a
// ping. On failure it returns a disabled Store together with the error so
// the caller can log a warning and carry on.
func Connect(ctx context.Context, addr, password, prefix string, ttl time.Duration) (*Store, error) {
	if addr == "" {
		return &Store{prefix: prefix, ttl: ttl}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return &Store{prefix: prefix, ttl: ttl}, fmt.Errorf("cache: redis ping: %w", err)
	}
	return New(rdb, prefix, ttl), nil
}

// Enabled reports whether the store is backed by Redis.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// TTL returns the default entry lifetime.
func (s *Store) TTL() time.Duration {
	if s == nil {
		return 0
	}
	return s.ttl
}

func (s *Store) key(k string) string { return s.prefix + k }

// Get retrieves a cached value by key and unmarshals into dest.
// Returns true on a cache hit, false on miss or error.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	if !s.Enabled() {
		return false
	}

	val, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues(driver).Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(driver).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(driver).Inc()
	return true
}

// Set stores value under key for ttl. A zero ttl uses the store default.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.ttl
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), data, ttl).Err()
}

// Del removes one or more keys.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.rdb.Del(ctx, full...).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Close()
}

// Remember returns the cached value for key, or calls load, caches its
// result and returns it. Cache failures never fail the call.
func Remember[T any](ctx context.Context, s *Store, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if err := s.Set(ctx, key, v, 0); err != nil {
		logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
	}
	return v, nil
}
