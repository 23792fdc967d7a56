package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// WithPrefix returns a view of c that prepends prefix to every key.
//
// Prefixes compose, so WithPrefix(WithPrefix(c, "nuget:"), "reg:") stores
// keys as "nuget:reg:<key>". Closing the view closes c.
func WithPrefix(c Cache, prefix string) Cache {
	if p, ok := c.(*prefixed); ok {
		return &prefixed{inner: p.inner, prefix: p.prefix + prefix}
	}
	return &prefixed{inner: c, prefix: prefix}
}

type prefixed struct {
	inner  Cache
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return p.inner.Set(ctx, p.prefix+key, data, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixed) Close() error { return p.inner.Close() }

// Hash returns the hex SHA-256 of data. Feed clients use a prefix of the
// hash of their index URL so that two feeds never share cache keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
