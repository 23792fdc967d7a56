package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend       string // file (default), redis, mongo or none
	Dir           string // FileCache directory
	RedisAddr     string // host:port or redis:// URL
	MongoURI      string // mongodb:// URI
	MongoDatabase string // Database name (default: depends)
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendFile:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory configured")
		}
		c, err := NewFileCache(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis cache: no address configured")
		}
		c, err := NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo cache: no uri configured")
		}
		c, err := NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
