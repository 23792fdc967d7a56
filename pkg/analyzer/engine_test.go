package analyzer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/nuget"
	"github.com/matzehuels/depends/pkg/observability"
	"github.com/matzehuels/depends/pkg/resolve"
)

// memorySource is an in-memory feed.
type memorySource struct {
	deps   map[string][]resolve.Dependency
	assets map[string]*resolve.PackageAssets
}

func newMemorySource() *memorySource {
	return &memorySource{deps: make(map[string][]resolve.Dependency), assets: make(map[string]*resolve.PackageAssets)}
}

func (m *memorySource) add(id, version string, deps ...string) *memorySource {
	key := identity(id, version).Key()
	m.deps[key] = nil
	for _, d := range deps {
		depID, rng, _ := strings.Cut(d, " ")
		m.deps[key] = append(m.deps[key], resolve.Dependency{ID: depID, Range: nuget.MustParseRange(rng)})
	}
	return m
}

func (m *memorySource) withLib(id, version, framework string, files ...string) *memorySource {
	a := m.assetsFor(id, version)
	a.Lib = append(a.Lib, resolve.AssetGroup{Framework: framework, Items: files})
	return m
}

func (m *memorySource) withFrameworkAssemblies(id, version, framework string, names ...string) *memorySource {
	a := m.assetsFor(id, version)
	a.FrameworkAssemblies = append(a.FrameworkAssemblies, resolve.AssetGroup{Framework: framework, Items: names})
	return m
}

func (m *memorySource) assetsFor(id, version string) *resolve.PackageAssets {
	key := identity(id, version).Key()
	if m.assets[key] == nil {
		m.assets[key] = &resolve.PackageAssets{Identity: identity(id, version)}
	}
	return m.assets[key]
}

func (m *memorySource) Name() string { return "memory" }

func (m *memorySource) ResolveDependencies(_ context.Context, id resolve.Identity, _ nuget.Framework) (*resolve.PackageInfo, error) {
	deps, ok := m.deps[id.Key()]
	if !ok {
		return nil, resolve.ErrNotFound
	}
	return &resolve.PackageInfo{Identity: id, Dependencies: deps}, nil
}

func (m *memorySource) Assets(_ context.Context, id resolve.Identity) (*resolve.PackageAssets, error) {
	if a, ok := m.assets[id.Key()]; ok {
		return a, nil
	}
	return nil, resolve.ErrNotFound
}

func identity(id, version string) resolve.Identity {
	return resolve.Identity{ID: id, Version: nuget.MustParseVersion(version)}
}

func edgeStrings(g *graph.Graph) []string {
	var out []string
	for _, e := range g.Edges() {
		out = append(out, e.String())
	}
	sort.Strings(out)
	return out
}

func hasEdge(g *graph.Graph, want string) bool {
	for _, e := range g.Edges() {
		if e.String() == want {
			return true
		}
	}
	return false
}

func TestAnalyzePackageLowestWins(t *testing.T) {
	src := newMemorySource().
		add("Root", "1.0.0", "X 1.0.0", "Y 1.0.0").
		add("Y", "1.0.0", "X 1.2.0").
		add("X", "1.0.0").
		add("X", "1.2.0").
		add("X", "1.5.0")

	g, err := New(Options{Sources: []resolve.Source{src}}).AnalyzePackage(context.Background(), "Root", "1.0.0", "net6.0")
	if err != nil {
		t.Fatalf("AnalyzePackage() error = %v", err)
	}

	if g.Root().Label() != "Root.1.0.0" {
		t.Errorf("Root() = %s, want Root.1.0.0", g.Root().Label())
	}
	x, ok := g.Node("x")
	if !ok || x.Version != "1.2.0" {
		t.Errorf("X = %+v, want version 1.2.0", x)
	}
	want := []string{
		"Root.1.0.0 -[[1.0.0, )]-> X.1.2.0",
		"Root.1.0.0 -[[1.0.0, )]-> Y.1.0.0",
		"Y.1.0.0 -[[1.2.0, )]-> X.1.2.0",
	}
	if got := edgeStrings(g); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("edges =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestAnalyzePackageAssemblies(t *testing.T) {
	src := newMemorySource().
		add("Root", "1.0.0", "Modern 1.0.0", "Http 1.0.0").
		add("Modern", "1.0.0").
		add("Http", "1.0.0").
		withLib("Root", "1.0.0", "net48", "lib/net48/Root.dll").
		withLib("Modern", "1.0.0", "netstandard2.0", "lib/netstandard2.0/Modern.dll", "lib/netstandard2.0/Modern.xml").
		withLib("Modern", "1.0.0", "net6.0", "lib/net6.0/Modern.dll", "lib/net6.0/Modern.Extra.dll").
		withFrameworkAssemblies("Http", "1.0.0", "", "System.Net.Http").
		withFrameworkAssemblies("Http", "1.0.0", "net48", "System.Web")

	g, err := New(Options{Sources: []resolve.Source{src}}).AnalyzePackage(context.Background(), "Root", "1.0.0", "net6.0")
	if err != nil {
		t.Fatalf("AnalyzePackage() error = %v", err)
	}

	if n := len(g.Outgoing("Root")); n != 2 {
		t.Errorf("Root has %d outgoing edges, want 2 (net48-only lib contributes nothing)", n)
	}
	if _, ok := g.Node("Root.dll"); ok {
		t.Error("incompatible net48 assembly should not be added")
	}
	for _, want := range []string{
		"Modern.1.0.0 --> Modern.dll",
		"Modern.1.0.0 --> Modern.Extra.dll",
		"Http.1.0.0 --> System.Net.Http.dll",
	} {
		if !hasEdge(g, want) {
			t.Errorf("missing edge %s in\n%s", want, strings.Join(edgeStrings(g), "\n"))
		}
	}
	if _, ok := g.Node("Modern.xml"); ok {
		t.Error("non-dll lib item should not become an assembly")
	}
	if _, ok := g.Node("System.Web.dll"); ok {
		t.Error("net48 framework assembly should not be added under net6.0")
	}
}

func TestAnalyzePackageNet48OnlyContributesNothing(t *testing.T) {
	src := newMemorySource().
		add("Legacy", "1.0.0").
		withLib("Legacy", "1.0.0", "net48", "lib/net48/Legacy.dll")

	g, err := New(Options{Sources: []resolve.Source{src}}).AnalyzePackage(context.Background(), "Legacy", "1.0.0", "net6.0")
	if err != nil {
		t.Fatalf("AnalyzePackage() error = %v", err)
	}
	if g.NodeCount() != 1 || g.EdgeCount() != 0 {
		t.Errorf("graph = %d nodes, %d edges; want just the package", g.NodeCount(), g.EdgeCount())
	}
}

func TestAnalyzePackageErrors(t *testing.T) {
	src := newMemorySource().add("Root", "1.0.0")

	tests := []struct {
		name      string
		sources   []resolve.Source
		id        string
		version   string
		framework string
		code      derrors.Code
	}{
		{"invalid id", []resolve.Source{src}, "bad id!", "1.0.0", "", derrors.ErrCodeInvalidInput},
		{"invalid version", []resolve.Source{src}, "Root", "one", "", derrors.ErrCodeInvalidInput},
		{"invalid framework", []resolve.Source{src}, "Root", "1.0.0", "silverlight5", derrors.ErrCodeInvalidInput},
		{"no sources", nil, "Root", "1.0.0", "", derrors.ErrCodeInvalidInput},
		{"missing package", []resolve.Source{src}, "Other", "1.0.0", "", derrors.ErrCodeMetadataNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(Options{Sources: tt.sources}).AnalyzePackage(context.Background(), tt.id, tt.version, tt.framework)
			if g != nil {
				t.Error("graph should be nil on error")
			}
			if !derrors.Is(err, tt.code) {
				t.Errorf("AnalyzePackage() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAnalyzePackageUnsatisfiable(t *testing.T) {
	src := newMemorySource().
		add("Root", "1.0.0", "A 1.0.0", "B 1.0.0").
		add("A", "1.0.0", "C [1.0.0]").
		add("B", "1.0.0", "C [2.0.0]").
		add("C", "1.0.0").
		add("C", "2.0.0")

	_, err := New(Options{Sources: []resolve.Source{src}}).AnalyzePackage(context.Background(), "Root", "1.0.0", "")
	if !derrors.Is(err, derrors.ErrCodeUnsatisfiableConstraints) {
		t.Errorf("AnalyzePackage() error = %v, want UNSATISFIABLE_CONSTRAINTS", err)
	}
}

type failingAssets struct{ *memorySource }

func (failingAssets) Assets(context.Context, resolve.Identity) (*resolve.PackageAssets, error) {
	return nil, derrors.New(derrors.ErrCodeNetwork, "download failed")
}

func TestAnalyzePackageAssetErrorPropagates(t *testing.T) {
	src := failingAssets{newMemorySource().add("Root", "1.0.0")}
	_, err := New(Options{Sources: []resolve.Source{src}}).AnalyzePackage(context.Background(), "Root", "1.0.0", "")
	if !derrors.Is(err, derrors.ErrCodeNetwork) {
		t.Errorf("AnalyzePackage() error = %v, want NETWORK_ERROR", err)
	}
}

// recordingHooks captures analysis events.
type recordingHooks struct {
	observability.NoopAnalysisHooks
	mu        sync.Mutex
	started   []string
	completed []error
	solves    int
}

func (r *recordingHooks) OnAnalyzeStart(_ context.Context, mode, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, mode+":"+target)
}

func (r *recordingHooks) OnAnalyzeComplete(_ context.Context, _, _ string, _, _ int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, err)
}

func (r *recordingHooks) OnSolveComplete(context.Context, int, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solves++
}

func TestAnalyzePackageHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetAnalysisHooks(hooks)
	t.Cleanup(observability.Reset)

	src := newMemorySource().add("Root", "1.0.0")
	a := New(Options{Sources: []resolve.Source{src}})
	if _, err := a.AnalyzePackage(context.Background(), "Root", "1.0.0", ""); err != nil {
		t.Fatal(err)
	}
	_, missing := a.AnalyzePackage(context.Background(), "Gone", "1.0.0", "")

	if len(hooks.started) != 2 || hooks.started[0] != "package:Root@1.0.0" {
		t.Errorf("started = %v", hooks.started)
	}
	if len(hooks.completed) != 2 || hooks.completed[0] != nil || !errors.Is(hooks.completed[1], missing) {
		t.Errorf("completed = %v", hooks.completed)
	}
	if hooks.solves != 1 {
		t.Errorf("solves = %d, want 1", hooks.solves)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{}.WithDefaults()
	if opts.Solver == nil || opts.Evaluator == nil || opts.Logger == nil {
		t.Errorf("WithDefaults() left nil fields: %+v", opts)
	}
	if opts.Concurrency != resolve.DefaultConcurrency {
		t.Errorf("Concurrency = %d", opts.Concurrency)
	}
	if opts.Policy != resolve.PolicyLowest {
		t.Errorf("Policy = %v, want lowest", opts.Policy)
	}
}
