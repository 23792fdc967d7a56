package analyzer

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/msbuild"
	"github.com/matzehuels/depends/pkg/observability"
	"github.com/matzehuels/depends/pkg/resolve"
)

// DefaultPackageFramework is the target used by [Analyzer.AnalyzePackage]
// when none is given.
const DefaultPackageFramework = "net8.0"

// Analysis modes, as reported to observability hooks.
const (
	ModePackage  = "package"
	ModeProject  = "project"
	ModeSolution = "solution"
)

// Options configures an Analyzer.
type Options struct {
	Sources     []resolve.Source // Package feeds, queried in order (package mode)
	Solver      resolve.Solver   // Conflict resolution (default: BacktrackingSolver)
	Policy      resolve.Policy   // Candidate preference (default: lowest)
	Evaluator   msbuild.Evaluator
	Concurrency int         // In-flight feed queries (default: resolve.DefaultConcurrency)
	Logger      *log.Logger // Progress output (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Solver == nil {
		opts.Solver = resolve.BacktrackingSolver{}
	}
	if opts.Evaluator == nil {
		opts.Evaluator = msbuild.StaticEvaluator{}
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = resolve.DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Analyzer builds dependency graphs. It holds no per-run state and is safe
// for concurrent use.
type Analyzer struct {
	opts Options
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts.WithDefaults()}
}

// run wraps one analysis with a run id for log correlation and the
// observability hooks.
func (a *Analyzer) run(ctx context.Context, mode, target string, fn func(logger *log.Logger) (*graph.Graph, error)) (*graph.Graph, error) {
	logger := a.opts.Logger.With("run", uuid.NewString()[:8])
	logger.Debug("analysis started", "mode", mode, "target", target)
	observability.Analysis().OnAnalyzeStart(ctx, mode, target)

	start := time.Now()
	g, err := fn(logger)

	var nodes, edges int
	if g != nil {
		nodes, edges = g.NodeCount(), g.EdgeCount()
	}
	elapsed := time.Since(start)
	observability.Analysis().OnAnalyzeComplete(ctx, mode, target, nodes, edges, elapsed, err)
	if err != nil {
		logger.Debug("analysis failed", "mode", mode, "target", target, "error", err)
		return nil, err
	}
	logger.Debug("analysis complete", "mode", mode, "nodes", nodes, "edges", edges, "duration", elapsed)
	return g, nil
}
