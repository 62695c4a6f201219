package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/foodfast/services/pkg/logging"
)

// Redis is an optional Store backend where per-entry expiry is delegated
// to Redis key TTLs. It is strictly best-effort: every Redis failure is
// downgraded to a cache miss so the resolver's behavior never depends on
// Redis being up. Values are stored as JSON; a nil pointer round-trips
// through "null", which keeps "known absent" entries intact.
type Redis[V any] struct {
	client *redis.Client
	kind   string
	prefix string
	logger zerolog.Logger
}

// NewRedis creates a Redis-backed store for one entity kind.
func NewRedis[V any](client *redis.Client, kind string) *Redis[V] {
	if client == nil {
		panic("redis client cannot be nil")
	}
	return &Redis[V]{
		client: client,
		kind:   kind,
		prefix: "resolve:" + kind + ":",
		logger: logging.NewLogger("cache"),
	}
}

func (r *Redis[V]) key(id int64) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

// Get returns the stored value when the key exists and has not expired.
func (r *Redis[V]) Get(ctx context.Context, id int64) (V, bool) {
	var zero V

	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			CacheErrors.WithLabelValues("redis", "get").Inc()
			r.logger.Warn().Err(err).Str("kind", r.kind).Int64("id", id).Msg("Redis get failed, treating as miss")
		}
		CacheMisses.WithLabelValues(r.kind, "redis").Inc()
		return zero, false
	}

	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		CacheErrors.WithLabelValues("redis", "get").Inc()
		r.logger.Warn().Err(err).Str("kind", r.kind).Int64("id", id).Msg("Corrupt cache entry, treating as miss")
		CacheMisses.WithLabelValues(r.kind, "redis").Inc()
		return zero, false
	}

	CacheHits.WithLabelValues(r.kind, "redis").Inc()
	return value, true
}

// Set stores value under the key with a Redis TTL. Failures are logged
// and dropped.
func (r *Redis[V]) Set(ctx context.Context, id int64, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		CacheErrors.WithLabelValues("redis", "set").Inc()
		r.logger.Warn().Err(err).Str("kind", r.kind).Int64("id", id).Msg("Marshal cache entry failed")
		return
	}

	if err := r.client.Set(ctx, r.key(id), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("redis", "set").Inc()
		r.logger.Warn().Err(err).Str("kind", r.kind).Int64("id", id).Msg("Redis set failed")
	}
}
