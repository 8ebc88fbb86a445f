package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	errs "github.com/matzehuels/typediagram/pkg/errors"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Backends lists the valid backend names.
var Backends = []string{BackendNone, BackendFile, BackendBolt, BackendRedis, BackendMongo}

// boltFile is the database name used inside Dir when Path is empty.
const boltFile = "cache.db"

// Config selects and configures a cache backend.
type Config struct {
	Backend string      `json:"backend" toml:"backend" yaml:"backend"`
	Dir     string      `json:"dir,omitempty" toml:"dir" yaml:"dir"`
	Path    string      `json:"path,omitempty" toml:"path" yaml:"path"`
	Redis   RedisConfig `json:"redis" toml:"redis" yaml:"redis"`
	Mongo   MongoConfig `json:"mongo" toml:"mongo" yaml:"mongo"`
}

// DefaultConfig is a file cache in [DefaultDir].
func DefaultConfig() Config {
	return Config{Backend: BackendFile}
}

// Validate checks that the backend is known and has what it needs to connect.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendNone, BackendFile, BackendBolt:
		return nil
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.redis.addr is required for the redis backend")
		}
		return nil
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.mongo.uri is required for the mongo backend")
		}
		return nil
	}
	return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: none, file, bolt, redis, mongo)", c.Backend)
}

// DefaultDir returns ~/.cache/typediagram.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", "typediagram"), nil
}

// Open builds the configured backend and wraps it with [WithHooks].
// An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		c   Cache
		err error
	)
	switch cfg.Backend {
	case BackendNone:
		c = NewNullCache()
	case "", BackendFile:
		dir := cfg.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		c, err = NewFileCache(dir)
	case BackendBolt:
		path := cfg.Path
		if path == "" {
			dir := cfg.Dir
			if dir == "" {
				if dir, err = DefaultDir(); err != nil {
					return nil, err
				}
			}
			path = filepath.Join(dir, boltFile)
		}
		c, err = NewBoltCache(path)
	case BackendRedis:
		c, err = NewRedisCache(ctx, cfg.Redis)
	case BackendMongo:
		c, err = NewMongoCache(ctx, cfg.Mongo)
	}
	if err != nil {
		return nil, err
	}
	return WithHooks(c), nil
}
