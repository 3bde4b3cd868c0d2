// Package cache implements the best-effort cache.Store on Redis with a
// small in-process LRU in front of it.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/supportchat/chat-api/internal/infrastructure/metrics"
)

const (
	localCacheSize = 512
	localCacheTTL  = 30 * time.Second
	opTimeout      = 2 * time.Second
)

// NewClient connects a Redis universal client from a URL, supporting
// comma-separated addresses for cluster configurations.
func NewClient(redisURL string) (redis.UniversalClient, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return client, nil
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "://") {
			parsed, err := redis.ParseURL(part)
			if err != nil {
				return nil, err
			}
			opts.Addrs = append(opts.Addrs, parsed.Addr)
			if opts.Username == "" {
				opts.Username = parsed.Username
			}
			if opts.Password == "" {
				opts.Password = parsed.Password
			}
			if opts.DB == 0 {
				opts.DB = parsed.DB
			}
			if opts.TLSConfig == nil {
				opts.TLSConfig = parsed.TLSConfig
			}
		} else {
			opts.Addrs = append(opts.Addrs, part)
		}
	}
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	return opts, nil
}

// RedisStore is a cache.Store backed by Redis with an expirable LRU in front.
// Redis failures are logged, counted, and degraded to misses.
type RedisStore struct {
	client redis.UniversalClient
	local  *lru.LRU[string, string]
	log    zerolog.Logger
}

// NewRedisStore builds the two-tier store.
func NewRedisStore(client redis.UniversalClient, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		local:  lru.NewLRU[string, string](localCacheSize, nil, localCacheTTL),
		log:    log.With().Str("component", "redis-store").Logger(),
	}
}

// Get returns the value for key, consulting the local tier first.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	if val, ok := s.local.Get(key); ok {
		return val, true
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			metrics.CacheErrors.WithLabelValues("get").Inc()
			s.log.Warn().Err(err).Str("key", key).Msg("redis get failed")
		}
		return "", false
	}
	s.local.Add(key, val)
	return val, true
}

// Set stores value under key in both tiers.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	s.local.Add(key, value)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("set").Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("redis set failed")
	}
}

// Delete removes key from both tiers.
func (s *RedisStore) Delete(ctx context.Context, key string) {
	s.local.Remove(key)

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		metrics.CacheErrors.WithLabelValues("delete").Inc()
		s.log.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

// Exists reports whether key is present in either tier.
func (s *RedisStore) Exists(ctx context.Context, key string) bool {
	if _, ok := s.local.Get(key); ok {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		metrics.CacheErrors.WithLabelValues("exists").Inc()
		return false
	}
	return n > 0
}
