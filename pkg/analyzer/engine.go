package analyzer

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/nuget"
	"github.com/matzehuels/depends/pkg/observability"
	"github.com/matzehuels/depends/pkg/resolve"
)

// AnalyzePackage resolves id at version against the configured sources and
// returns its dependency graph, rooted at the package itself.
//
// An empty framework means [DefaultPackageFramework]. Packages that are
// found but offer no assets compatible with framework contribute no
// assembly nodes.
func (a *Analyzer) AnalyzePackage(ctx context.Context, id, version, framework string) (*graph.Graph, error) {
	return a.run(ctx, ModePackage, id+"@"+version, func(logger *log.Logger) (*graph.Graph, error) {
		return a.analyzePackage(ctx, logger, id, version, framework)
	})
}

func (a *Analyzer) analyzePackage(ctx context.Context, logger *log.Logger, id, version, framework string) (*graph.Graph, error) {
	if err := derrors.ValidatePackageID(id); err != nil {
		return nil, err
	}
	v, err := nuget.ParseVersion(version)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid version %q", version)
	}
	if framework == "" {
		framework = DefaultPackageFramework
	}
	target, err := nuget.ParseFramework(framework)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid framework %q", framework)
	}
	if len(a.opts.Sources) == 0 {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "no package sources configured")
	}

	root := resolve.Identity{ID: id, Version: v}
	disc, err := resolve.Discover(ctx, root, a.opts.Sources, resolve.Options{
		Framework:   target,
		Concurrency: a.opts.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	if _, ok := disc.Find(root); !ok {
		return nil, derrors.New(derrors.ErrCodeMetadataNotFound, "package %s %s not found in any source", id, v)
	}
	logger.Info("discovered packages", "count", len(disc.Packages))

	start := time.Now()
	selected, err := a.opts.Solver.Solve(
		[]resolve.Dependency{{ID: id, Range: nuget.ExactRange(v)}},
		disc.Packages,
		a.opts.Policy,
	)
	observability.Analysis().OnSolveComplete(ctx, len(selected), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	logger.Info("resolved versions", "selected", len(selected), "policy", a.opts.Policy)

	rootInfo, _ := selected.Get(id)
	b := graph.NewBuilder(packageNode(rootInfo))

	packages := selected.Sorted()
	for _, p := range packages {
		assemblies, err := a.packageAssemblies(ctx, logger, p, target)
		if err != nil {
			return nil, err
		}
		node := packageNode(p)
		b.AddNode(node)
		for _, asm := range assemblies {
			b.AddNode(asm).AddEdge(graph.NewEdge(node, asm))
		}
	}

	for _, p := range packages {
		from := packageNode(p)
		for _, dep := range p.Dependencies {
			to, ok := selected.Get(dep.ID)
			if !ok {
				continue
			}
			b.AddEdge(graph.NewLabeledEdge(from, packageNode(to), dep.Range.String()))
		}
	}
	return b.Build(), nil
}

func packageNode(p *resolve.PackageInfo) graph.Node {
	return graph.NewPackage(p.Identity.ID, p.Identity.Version.String())
}

// packageAssemblies lists the assemblies p contributes under target: the
// .dll files of its nearest lib/ group and the framework assemblies of its
// nearest framework group, each reduced independently.
func (a *Analyzer) packageAssemblies(ctx context.Context, logger *log.Logger, p *resolve.PackageInfo, target nuget.Framework) ([]graph.Node, error) {
	assets, err := a.assets(ctx, p)
	if errors.Is(err, resolve.ErrNotFound) {
		logger.Warn("package archive not found, skipping assemblies", "package", p.Identity)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var nodes []graph.Node
	if group, ok := nearest(target, assets.Lib); ok {
		for _, item := range group.Items {
			if strings.EqualFold(path.Ext(item), ".dll") {
				nodes = append(nodes, graph.NewAssembly(item))
			}
		}
	}
	if group, ok := nearest(target, assets.FrameworkAssemblies); ok {
		for _, name := range group.Items {
			nodes = append(nodes, graph.NewAssembly(withDLL(name)))
		}
	}
	if len(nodes) == 0 {
		logger.Debug("no compatible assemblies", "package", p.Identity, "framework", target)
	}
	return nodes, nil
}

// assets asks the source that answered discovery first, then the others.
func (a *Analyzer) assets(ctx context.Context, p *resolve.PackageInfo) (*resolve.PackageAssets, error) {
	ordered := make([]resolve.Source, 0, len(a.opts.Sources))
	for _, s := range a.opts.Sources {
		if s.Name() == p.Source {
			ordered = append([]resolve.Source{s}, ordered...)
		} else {
			ordered = append(ordered, s)
		}
	}
	for _, s := range ordered {
		assets, err := s.Assets(ctx, p.Identity)
		if errors.Is(err, resolve.ErrNotFound) || (err == nil && assets == nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return assets, nil
	}
	return nil, resolve.ErrNotFound
}

func nearest(target nuget.Framework, groups []resolve.AssetGroup) (resolve.AssetGroup, bool) {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Framework
	}
	name, ok := nuget.Reduce(target, names)
	if !ok {
		return resolve.AssetGroup{}, false
	}
	for _, g := range groups {
		if g.Framework == name {
			return g, true
		}
	}
	return resolve.AssetGroup{}, false
}

// withDLL appends the .dll suffix that framework assembly names omit.
func withDLL(name string) string {
	if strings.EqualFold(path.Ext(name), ".dll") {
		return name
	}
	return name + ".dll"
}
