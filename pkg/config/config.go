// Package config loads depends settings from defaults, a TOML file,
// DEPENDS_* environment variables and command-line flags.
//
// Later sources override earlier ones: flags > env > file > defaults.
// Flag names map to keys by replacing "-" with ".", so --cache-backend sets
// cache.backend. Environment variables map by stripping the DEPENDS_ prefix,
// lower-casing and replacing "_" with ".", so DEPENDS_CACHE_TTL sets
// cache.ttl. Keys therefore never contain underscores.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	tomlparser "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	derrors "github.com/matzehuels/depends/pkg/errors"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "depends.toml"

	// EnvPrefix prefixes every environment variable read by [Load].
	EnvPrefix = "DEPENDS_"

	appName = "depends"
)

// Defaults.
const (
	DefaultFramework   = "net8.0"
	DefaultSource      = "https://api.nuget.org/v3/index.json"
	DefaultConcurrency = 16
	DefaultTimeout     = 5 * time.Minute
	DefaultCacheTTL    = 24 * time.Hour
	DefaultServeAddr   = "127.0.0.1:8080"
)

// Config is the effective configuration.
type Config struct {
	Framework   string        `koanf:"framework"`
	Sources     []string      `koanf:"sources"`
	Concurrency int           `koanf:"concurrency"`
	Timeout     time.Duration `koanf:"timeout"`
	Policy      string        `koanf:"policy"`
	Cache       CacheConfig   `koanf:"cache"`
	Serve       ServeConfig   `koanf:"serve"`
}

// CacheConfig selects the metadata cache backend.
type CacheConfig struct {
	Backend string        `koanf:"backend"` // file, redis, mongo or none
	Dir     string        `koanf:"dir"`
	TTL     time.Duration `koanf:"ttl"`
	Redis   string        `koanf:"redis"` // Redis address or redis:// URL
	Mongo   string        `koanf:"mongo"` // MongoDB URI
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Options controls where [Load] looks.
type Options struct {
	// File is the config file path. Empty means FileName in the working
	// directory, which may be absent; an explicit File must exist.
	File string

	// Flags are layered last. Only flags the user changed override other
	// sources.
	Flags *pflag.FlagSet
}

// Load builds the effective configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path, explicit := opts.File, opts.File != ""
	if !explicit {
		path = FileName
	}
	if err := k.Load(file.Provider(path), tomlparser.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "load %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, flagKey(opts.Flags)), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "no package sources configured")
	}
	for _, src := range c.Sources {
		if err := derrors.ValidateURL(src); err != nil {
			return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "source %q", src)
		}
	}
	if c.Concurrency <= 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "concurrency must be positive, got %d", c.Concurrency)
	}
	switch c.Policy {
	case "lowest", "highest":
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown resolution policy %q", c.Policy)
	}
	switch c.Cache.Backend {
	case "file", "redis", "mongo", "none":
	default:
		return derrors.New(derrors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// mapProvider serves an already nested key map.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) { return p, nil }

func (p mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("map provider does not support ReadBytes")
}

func defaults() map[string]any {
	return map[string]any{
		"framework":   DefaultFramework,
		"sources":     []string{DefaultSource},
		"concurrency": DefaultConcurrency,
		"timeout":     DefaultTimeout.String(),
		"policy":      "lowest",
		"cache": map[string]any{
			"backend": "file",
			"dir":     DefaultCacheDir(),
			"ttl":     DefaultCacheTTL.String(),
			"redis":   "",
			"mongo":   "",
		},
		"serve": map[string]any{
			"addr": DefaultServeAddr,
		},
	}
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// flagKey maps a flag name to its config key. The "source" flag fills the
// "sources" list and "addr" sets the serve address.
func flagKey(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key := strings.ReplaceAll(f.Name, "-", ".")
		switch key {
		case "source":
			key = "sources"
		case "addr":
			key = "serve.addr"
		}
		return key, posflag.FlagVal(fs, f)
	}
}

// DefaultCacheDir returns the cache directory using the XDG convention
// (~/.cache/depends/).
func DefaultCacheDir() string {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}

// view is the TOML shape written by [Config.Write]. Durations are written
// as strings so the output can be loaded again.
type view struct {
	Framework   string    `toml:"framework"`
	Sources     []string  `toml:"sources"`
	Concurrency int       `toml:"concurrency"`
	Timeout     string    `toml:"timeout"`
	Policy      string    `toml:"policy"`
	Cache       cacheView `toml:"cache"`
	Serve       serveView `toml:"serve"`
}

type cacheView struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`
	Redis   string `toml:"redis,omitempty"`
	Mongo   string `toml:"mongo,omitempty"`
}

type serveView struct {
	Addr string `toml:"addr"`
}

// Write encodes c as a depends.toml document.
func (c *Config) Write(w io.Writer) error {
	v := view{
		Framework:   c.Framework,
		Sources:     c.Sources,
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout.String(),
		Policy:      c.Policy,
		Cache: cacheView{
			Backend: c.Cache.Backend,
			Dir:     c.Cache.Dir,
			TTL:     c.Cache.TTL.String(),
			Redis:   c.Cache.Redis,
			Mongo:   c.Cache.Mongo,
		},
		Serve: serveView{Addr: c.Serve.Addr},
	}
	return toml.NewEncoder(w).Encode(v)
}
