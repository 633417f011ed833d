package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"jobboard/internal/middleware"
	"jobboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store is a cache-aside helper over Redis. A Store with a nil client always
// misses and never writes.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps rdb, which may be nil.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first; on a miss it calls fetch, which must populate dest,
// then stores dest with ttl. Redis failures never fail the read.
func (s *Store) Aside(ctx context.Context, namespace, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := s.GetJSON(ctx, key, dest)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(namespace, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	case found:
		observability.CacheLookups.WithLabelValues(namespace, "hit").Inc()
		return nil
	default:
		observability.CacheLookups.WithLabelValues(namespace, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return err
	}

	if err := s.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
	return nil
}

// Version returns the current version of a namespace, 0 when unset or unavailable.
func (s *Store) Version(ctx context.Context, namespace string) int64 {
	if s == nil || s.rdb == nil {
		return 0
	}
	raw, err := s.rdb.Get(ctx, versionKey(namespace)).Result()
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Bump advances a namespace version, invalidating all keys derived from it.
func (s *Store) Bump(ctx context.Context, namespace string) {
	if s == nil || s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, versionKey(namespace)).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "namespace", namespace, "error", err)
	}
}
