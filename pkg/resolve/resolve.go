package resolve

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/matzehuels/depends/pkg/nuget"
)

// ErrNotFound is returned by a [Source] that does not know an identity.
// Returning (nil, nil) means the same thing.
var ErrNotFound = errors.New("resolve: package not found")

// Identity names one version of one package.
type Identity struct {
	ID      string
	Version nuget.Version
}

// Key returns the normalized identity used by the memo table.
func (i Identity) Key() string {
	return strings.ToLower(i.ID) + "/" + strings.ToLower(i.Version.String())
}

// String returns "Id.Version", the same form package nodes display.
func (i Identity) String() string { return i.ID + "." + i.Version.String() }

// Dependency is a requested package range.
type Dependency struct {
	ID    string
	Range nuget.VersionRange
}

// PackageInfo holds the direct dependencies of one package identity under a
// target framework.
type PackageInfo struct {
	Identity     Identity
	Dependencies []Dependency
	Source       string // Name of the source that answered
}

// AssetGroup is a set of files that apply to one target framework.
// Framework is a folder-style moniker ("net6.0", "netstandard2.0"); an empty
// value means the group applies to any framework.
type AssetGroup struct {
	Framework string
	Items     []string
}

// PackageAssets lists the files a package ships.
type PackageAssets struct {
	Identity Identity
	// Lib groups are keyed by the lib/<framework> folder; Items are paths
	// inside the package, e.g. "lib/net6.0/Serilog.dll".
	Lib []AssetGroup
	// FrameworkAssemblies are platform-supplied assembly names, e.g.
	// "System.Net.Http", without a file suffix.
	FrameworkAssemblies []AssetGroup
}

// Source is a package metadata source such as a NuGet feed.
//
// Implementations must be safe for concurrent use; discovery queries many
// identities in parallel.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// ResolveDependencies returns the direct dependencies of id under
	// framework, or ErrNotFound (or nil, nil) when the source does not have it.
	ResolveDependencies(ctx context.Context, id Identity, framework nuget.Framework) (*PackageInfo, error)
	// Assets lists the files shipped by id.
	Assets(ctx context.Context, id Identity) (*PackageAssets, error)
}

// Selection is the result of conflict resolution: exactly one package per
// id, keyed by lower-cased id.
type Selection map[string]*PackageInfo

// Get returns the selected package for id, ignoring case.
func (s Selection) Get(id string) (*PackageInfo, bool) {
	p, ok := s[strings.ToLower(id)]
	return p, ok
}

// Sorted returns the selected packages ordered by id.
func (s Selection) Sorted() []*PackageInfo {
	out := make([]*PackageInfo, 0, len(s))
	for _, p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePackages)
	return out
}

func comparePackages(a, b *PackageInfo) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Identity.ID), strings.ToLower(b.Identity.ID)),
		nuget.Compare(a.Identity.Version, b.Identity.Version),
	)
}
