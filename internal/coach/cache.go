package coach

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/domain"
)

// ErrCacheUnavailable is returned by a nil or disconnected cache.
var ErrCacheUnavailable = errors.New("narrative cache not available")

// Cache stores model replies keyed by a metrics hash.
type Cache interface {
	Get(ctx context.Context, key string) (*Reply, bool)
	Set(ctx context.Context, key string, reply *Reply, ttl time.Duration) error
}

// RedisCache is a redis-backed Cache. A nil *RedisCache is a valid always-miss cache.
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisCache connects to redis and verifies the connection.
// Returns nil (an always-miss cache) if redis cannot be reached.
func NewRedisCache(ctx context.Context, addr, password string, db int, logger zerolog.Logger) *RedisCache {
	logger = logger.With().Str("component", "coach_cache").Logger()
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", addr).Msg("redis unreachable, narrative cache disabled")
		client.Close()
		return nil
	}

	logger.Info().Str("addr", addr).Msg("connected to redis")
	return &RedisCache{client: client, logger: logger}
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client *redis.Client, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger.With().Str("component", "coach_cache").Logger()}
}

// Get returns a cached reply. Misses and redis errors both report false.
func (c *RedisCache) Get(ctx context.Context, key string) (*Reply, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var r Reply
	if err := json.Unmarshal(val, &r); err != nil {
		return nil, false
	}
	return &r, true
}

// Set stores a reply with expiration.
func (c *RedisCache) Set(ctx context.Context, key string, reply *Reply, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return ErrCacheUnavailable
	}

	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Close closes the redis connection.
func (c *RedisCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// CacheKey derives the cache key of a metrics set. It returns "" when the
// metrics cannot be encoded (NaN or Inf); such metrics are never cached.
func CacheKey(m domain.NarrativeMetrics) string {
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	sum := md5.Sum(data)
	return fmt.Sprintf("coach:narrative:%x", sum[:8])
}
