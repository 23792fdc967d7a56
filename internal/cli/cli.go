// Package cli implements the depends command-line interface.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depends/pkg/analyzer"
	"github.com/matzehuels/depends/pkg/buildinfo"
	"github.com/matzehuels/depends/pkg/cache"
	"github.com/matzehuels/depends/pkg/config"
	"github.com/matzehuels/depends/pkg/integrations/nuget"
	"github.com/matzehuels/depends/pkg/resolve"
)

// =============================================================================
// Constants
// =============================================================================

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "depends",
		Short: "Depends maps the dependency graph of .NET projects and NuGet packages",
		Long: `Depends builds the dependency graph of a .NET project, a solution, or a
published NuGet package, and renders it as a Graphviz diagram, an interactive
terminal browser, or an HTTP JSON API.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./"+config.FileName+")")
	root.PersistentFlags().String("cache-backend", "", "metadata cache: file, redis, mongo or none")
	root.PersistentFlags().String("cache-dir", "", "directory for the file cache")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Analyzer Factory
// =============================================================================

// loadConfig layers the command's flags over file, env and defaults.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.Options{File: c.configFile, Flags: cmd.Flags()})
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	return cache.Open(ctx, cache.Config{
		Backend:   cfg.Cache.Backend,
		Dir:       cfg.Cache.Dir,
		RedisAddr: cfg.Cache.Redis,
		MongoURI:  cfg.Cache.Mongo,
	})
}

// newAnalyzer wires one NuGet client per configured source onto a shared
// cache. The returned close function releases the cache.
func (c *CLI) newAnalyzer(ctx context.Context, cfg *config.Config, refresh bool) (*analyzer.Analyzer, func(), error) {
	backend, err := openCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	sources := make([]resolve.Source, len(cfg.Sources))
	for i, url := range cfg.Sources {
		client := nuget.NewClient(backend, cfg.Cache.TTL, url)
		client.Refresh = refresh
		sources[i] = client
	}

	policy := resolve.PolicyLowest
	if cfg.Policy == resolve.PolicyHighest.String() {
		policy = resolve.PolicyHighest
	}

	a := analyzer.New(analyzer.Options{
		Sources:     sources,
		Policy:      policy,
		Concurrency: cfg.Concurrency,
		Logger:      loggerFromContext(ctx),
	})
	return a, func() { _ = backend.Close() }, nil
}

// withTimeout bounds ctx by d unless d is zero.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
