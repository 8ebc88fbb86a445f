package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for [NewRedisCache].
type RedisConfig struct {
	Addr     string `json:"addr" toml:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" toml:"password" yaml:"password"`
	DB       int    `json:"db,omitempty" toml:"db" yaml:"db"`

	// Prefix namespaces every key so several deployments can share a server.
	// Empty means DefaultRedisPrefix.
	Prefix string `json:"prefix,omitempty" toml:"prefix" yaml:"prefix"`
}

// DefaultRedisPrefix namespaces keys when RedisConfig.Prefix is empty.
const DefaultRedisPrefix = "typediagram:"

// RedisCache stores entries in Redis using native key expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero ttl keeps the key until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Clear deletes every key this cache could have written, found with SCAN.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	count := 0
	for _, pattern := range clearPatterns(c.prefix) {
		iter := c.client.Scan(ctx, 0, pattern, 500).Iterator()
		var batch []string
		for iter.Next(ctx) {
			batch = append(batch, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return count, err
		}
		if len(batch) == 0 {
			continue
		}
		n, err := c.client.Del(ctx, batch...).Result()
		count += int(n)
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// clearPatterns matches keys written under prefix, both plain and behind a
// ScopedKeyer scope. Every pattern starts with prefix so foreign keys survive.
func clearPatterns(prefix string) []string {
	var patterns []string
	for _, p := range []string{PrefixLayout, PrefixArtifact, PrefixTyping} {
		patterns = append(patterns, prefix+p+":*", prefix+"*:"+p+":*")
	}
	return patterns
}

// Close closes the client.
func (c *RedisCache) Close() error { return c.client.Close() }

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
