package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depends/pkg/analyzer"
	"github.com/matzehuels/depends/pkg/config"
	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/msbuild"
)

// analyzeOpts holds the flags shared by the analyze subcommands.
type analyzeOpts struct {
	output  outputOpts
	refresh bool // bypass the metadata cache
	watch   bool // re-analyze when inputs change
}

// analyzeFunc runs one analysis mode against a prepared analyzer.
type analyzeFunc func(ctx context.Context, a *analyzer.Analyzer, framework string) (*graph.Graph, error)

// analyzeCommand creates the analyze command with one subcommand per mode.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build the dependency graph of a package, project or solution",
		Long: `Build a dependency graph and write it as JSON, DOT, SVG, PDF or PNG.

Examples:
  depends analyze package Serilog 3.1.1 --framework net6.0
  depends analyze project src/App/App.csproj -o app.svg
  depends analyze solution App.sln -o graph.json --watch`,
	}

	f := cmd.PersistentFlags()
	f.String("framework", "", "target framework (package default: "+config.DefaultFramework+"; project default: the project's own)")
	f.StringSlice("source", nil, "NuGet v3 service index URL (repeatable)")
	f.Int("concurrency", 0, "maximum in-flight feed queries")
	f.Duration("timeout", 0, "abort the analysis after this long")
	f.String("policy", "", "version preference: lowest or highest")
	f.BoolVar(&opts.refresh, "refresh", false, "bypass the metadata cache")
	opts.output.register(f)

	cmd.AddCommand(c.analyzePackageCommand(&opts))
	cmd.AddCommand(c.analyzeProjectCommand(&opts))
	cmd.AddCommand(c.analyzeSolutionCommand(&opts))

	return cmd
}

func (c *CLI) analyzePackageCommand(opts *analyzeOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "package <id> <version>",
		Short: "Resolve a published NuGet package against its feeds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, version := args[0], args[1]
			return c.runAnalyze(cmd, opts, id+" "+version, nil,
				func(ctx context.Context, a *analyzer.Analyzer, framework string) (*graph.Graph, error) {
					return a.AnalyzePackage(ctx, id, version, framework)
				})
		},
	}
}

func (c *CLI) analyzeProjectCommand(opts *analyzeOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <path>",
		Short: "Read a restored project's lock file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return c.runAnalyze(cmd, opts, path, projectInputs(path),
				func(ctx context.Context, a *analyzer.Analyzer, framework string) (*graph.Graph, error) {
					return a.AnalyzeProject(ctx, path, framework)
				})
		},
	}
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-analyze when the project or its assets file changes")
	return cmd
}

func (c *CLI) analyzeSolutionCommand(opts *analyzeOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solution <path>",
		Short: "Analyze every project of a .sln or .slnx solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return c.runAnalyze(cmd, opts, path, solutionInputs(path),
				func(ctx context.Context, a *analyzer.Analyzer, framework string) (*graph.Graph, error) {
					return a.AnalyzeSolution(ctx, path, framework)
				})
		},
	}
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-analyze when the solution, a project or an assets file changes")
	return cmd
}

// runAnalyze loads config, runs fn once, writes the result, and with --watch
// repeats whenever one of the files returned by inputs changes.
func (c *CLI) runAnalyze(cmd *cobra.Command, opts *analyzeOpts, target string, inputs func(framework string) []string, fn analyzeFunc) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := opts.output.resolve(formatJSON)
	if err != nil {
		return err
	}

	// The configured framework is a default for packages only; projects
	// fall back to their own TargetFramework.
	framework, _ := cmd.Flags().GetString("framework")
	if inputs == nil && framework == "" {
		framework = cfg.Framework
	}

	a, closeCache, err := c.newAnalyzer(ctx, cfg, opts.refresh)
	if err != nil {
		return err
	}
	defer closeCache()

	once := func() error {
		runCtx, cancel := withTimeout(ctx, cfg.Timeout)
		defer cancel()

		spinner := newSpinnerWithContext(runCtx, "Analyzing "+target)
		spinner.Start()
		prog := newProgress(logger)
		g, err := fn(runCtx, a, framework)
		spinner.Stop()
		if err != nil {
			return timeoutError(ctx, err, cfg)
		}
		prog.done("Built graph for " + target)
		warnCycles(logger, g)

		if err := opts.output.write(ctx, g, format); err != nil {
			return err
		}
		if opts.output.path != "" {
			printSuccess("Wrote %s", opts.output.path)
			printStats(g)
		}
		return nil
	}

	if !opts.watch || inputs == nil {
		return once()
	}

	if err := once(); err != nil {
		printError("%s", derrors.UserMessage(err))
	}
	printInfo("Watching %s for changes (Ctrl+C to stop)", target)
	return watchFiles(ctx, logger, func() []string { return inputs(framework) }, func() error {
		if err := once(); err != nil {
			printError("%s", derrors.UserMessage(err))
		}
		return nil
	})
}

// timeoutError reports an expired analysis deadline as TIMEOUT. A cancelled
// parent context is passed through unchanged.
func timeoutError(parent context.Context, err error, cfg *config.Config) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return derrors.Wrap(derrors.ErrCodeTimeout, err, "analysis did not finish within %s", cfg.Timeout)
	}
	return err
}

func warnCycles(logger *log.Logger, g *graph.Graph) {
	for _, group := range graph.Cycles(g) {
		ids := make([]string, len(group))
		for i, n := range group {
			ids[i] = n.ID
		}
		logger.Warn("dependency cycle", "nodes", fmt.Sprint(ids))
	}
}

// projectInputs lists the files whose change invalidates a project graph.
func projectInputs(path string) func(string) []string {
	return func(framework string) []string {
		files := []string{path}
		res, err := msbuild.StaticEvaluator{}.Evaluate(context.Background(), path, framework)
		if err == nil && res.AssetsFile != "" {
			files = append(files, res.AssetsFile)
		}
		return files
	}
}

// solutionInputs lists the solution file plus every member's inputs.
func solutionInputs(path string) func(string) []string {
	return func(framework string) []string {
		files := []string{path}
		members, err := msbuild.ReadSolution(path)
		if err != nil {
			return files
		}
		for _, m := range members {
			files = append(files, projectInputs(m.Path)(framework)...)
		}
		return files
	}
}
