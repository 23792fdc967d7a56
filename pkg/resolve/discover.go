package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/nuget"
	"github.com/matzehuels/depends/pkg/observability"
)

// DefaultConcurrency is the default number of in-flight metadata queries.
const DefaultConcurrency = 16

// Options configures transitive discovery.
type Options struct {
	Framework   nuget.Framework // Target framework for dependency groups
	Concurrency int             // Maximum in-flight queries (default: 16)
	Logger      *log.Logger     // Debug output (optional)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Framework.Family == "" {
		opts.Framework = nuget.AnyFramework
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Discovery is the transitive metadata closure of a root identity.
type Discovery struct {
	Root     Identity
	Packages []*PackageInfo // Every resolved identity, ordered by id then version
}

// Find returns the discovered package for id, if any.
func (d *Discovery) Find(id Identity) (*PackageInfo, bool) {
	for _, p := range d.Packages {
		if p.Identity.Key() == id.Key() {
			return p, true
		}
	}
	return nil, false
}

// Discover collects the transitive closure of root across sources.
//
// Each identity is queried at most once. For every dependency found, the
// next identity to visit is the minimum version of its range; ranges with
// no lower bound are skipped. Identities no source knows are dropped.
// Any other source error aborts the whole discovery, as does cancelling
// ctx; no partial closure is returned in either case.
func Discover(ctx context.Context, root Identity, sources []Source, opts Options) (*Discovery, error) {
	if len(sources) == 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "no package sources configured")
	}
	opts = opts.WithDefaults()

	d := &discoverer{
		sources: sources,
		opts:    opts,
		memo:    NewMemo(),
		sem:     semaphore.NewWeighted(int64(opts.Concurrency)),
	}
	g, gctx := errgroup.WithContext(ctx)
	d.visit(gctx, g, root)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pkgs := d.memo.Packages()
	opts.Logger.Debug("discovery complete", "root", root, "identities", d.memo.Len(), "resolved", len(pkgs))
	return &Discovery{Root: root, Packages: pkgs}, nil
}

type discoverer struct {
	sources []Source
	opts    Options
	memo    *Memo
	sem     *semaphore.Weighted
}

// visit spawns one task per newly claimed identity. Tasks are not limited
// by the group itself; the semaphore bounds the queries so that a task
// spawning children never blocks on its own slot.
func (d *discoverer) visit(ctx context.Context, g *errgroup.Group, id Identity) {
	entry, won := d.memo.Claim(id.Key())
	if !won {
		return
	}
	g.Go(func() error {
		info, err := d.query(ctx, id)
		if err != nil {
			entry.Release()
			return err
		}
		if info == nil {
			entry.Release()
			d.opts.Logger.Debug("package not found in any source", "package", id)
			return nil
		}
		entry.Resolve(info)

		for _, dep := range info.Dependencies {
			next, ok := dep.Range.MinVersion()
			if !ok {
				d.opts.Logger.Debug("skipping dependency without lower bound",
					"package", id, "dependency", dep.ID, "range", dep.Range)
				continue
			}
			d.visit(ctx, g, Identity{ID: dep.ID, Version: next})
		}
		return nil
	})
}

// query asks each source in order and returns the first answer.
func (d *discoverer) query(ctx context.Context, id Identity) (*PackageInfo, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)

	for _, src := range d.sources {
		start := time.Now()
		info, err := src.ResolveDependencies(ctx, id, d.opts.Framework)
		if isNotFound(err) {
			info, err = nil, nil
		}
		observability.Analysis().OnDiscoverQuery(ctx, src.Name(), id.String(), info != nil, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("query %s for %s: %w", src.Name(), id, err)
		}
		if info != nil {
			if info.Source == "" {
				info.Source = src.Name()
			}
			return info, nil
		}
	}
	return nil, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || derrors.Is(err, derrors.ErrCodeMetadataNotFound)
}
