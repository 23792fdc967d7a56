// Package cache stores feed responses and downloaded packages between runs.
//
// All backends implement [Cache], a byte-oriented key/value store with
// per-entry TTL:
//
//   - [FileCache]: one file per entry under a directory (the CLI default)
//   - [RedisCache]: a shared Redis instance
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing; used when caching is disabled and in tests
//
// [Open] builds a backend from a [Config]. [WithPrefix] scopes a cache so
// that several clients can share one backend without key collisions.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for opaque byte payloads.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
