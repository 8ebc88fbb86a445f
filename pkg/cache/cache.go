// Package cache stores computed drawings, rendered artifacts and typing
// results keyed by content hash.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [BoltCache]: a single bbolt database file
//   - [RedisCache]: shared cache for multi-instance servers
//   - [MongoCache]: shared cache in a MongoDB collection with a TTL index
//
// [Open] builds any of these from a [Config].
//
// # Keys
//
// A [Keyer] derives keys from the content hash of the input and every
// option that changes the output, so two requests share an entry exactly
// when they would produce the same bytes. [ScopedKeyer] prefixes keys for
// tenant isolation.
//
// # Hooks
//
// [WithHooks] wraps a cache so every hit, miss and write is reported to
// [observability.Cache].
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (nil, false, nil), not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Time-to-live for each kind of entry. Layouts and artifacts are pure
// functions of their key, so they live long; typing results depend on the
// engine version and expire sooner.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLTyping   = 24 * time.Hour
)
