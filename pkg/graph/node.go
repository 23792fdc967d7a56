package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Node.Validate] when the node ID is
	// empty or whitespace. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrUnknownKind is returned by [ParseKind] for unrecognized kind names.
	ErrUnknownKind = errors.New("unknown node kind")
)

// Kind discriminates the node variants of a dependency graph.
//
// Kinds are strings so that their natural ordering ("Assembly" < "Package" <
// "Project" < "Solution") is also the ordering renderers use when emitting
// outgoing edges.
type Kind string

const (
	// KindAssembly is a leaf compiled-code reference (a .dll file).
	KindAssembly Kind = "Assembly"
	// KindPackage is a NuGet package. Its Version is informational only.
	KindPackage Kind = "Package"
	// KindProject is an analyzed project file.
	KindProject Kind = "Project"
	// KindSolution is the synthetic aggregation root of a multi-project workspace.
	KindSolution Kind = "Solution"
)

// ParseKind converts a kind name to a Kind, ignoring case.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindAssembly, KindPackage, KindProject, KindSolution} {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Node is a vertex in the dependency graph.
//
// Identity is the ID compared case-insensitively: two nodes with IDs
// "Newtonsoft.Json" and "newtonsoft.json" are the same node regardless of
// their kind or version. Use [Node.Key] wherever a node is used as a map key.
type Node struct {
	ID      string // Display identifier (file name or package id)
	Kind    Kind   // Variant discriminant
	Version string // Package version; empty for other kinds
}

// NewProject creates a project node keyed by the project's file name.
func NewProject(path string) Node {
	return Node{ID: baseName(path), Kind: KindProject}
}

// NewSolution creates a solution root node keyed by the solution's file name.
func NewSolution(path string) Node {
	return Node{ID: baseName(path), Kind: KindSolution}
}

// NewPackage creates a package node for the given id and version.
func NewPackage(id, version string) Node {
	return Node{ID: strings.TrimSpace(id), Kind: KindPackage, Version: version}
}

// NewAssembly creates an assembly node keyed by the binary's file name.
func NewAssembly(name string) Node {
	return Node{ID: baseName(name), Kind: KindAssembly}
}

// Key returns the normalized identity of the node.
func (n Node) Key() string { return strings.ToLower(n.ID) }

// Equal reports whether n and other have the same identity.
func (n Node) Equal(other Node) bool { return strings.EqualFold(n.ID, other.ID) }

// Validate returns ErrInvalidNodeID if the node has no usable identifier.
func (n Node) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return ErrInvalidNodeID
	}
	return nil
}

// Label returns the display label: "Id.Version" for packages with a version,
// the ID otherwise.
func (n Node) Label() string {
	if n.Kind == KindPackage && n.Version != "" {
		return n.ID + "." + n.Version
	}
	return n.ID
}

// String implements fmt.Stringer.
func (n Node) String() string { return n.Label() }

// baseName strips directories from both slash styles, since project and
// reference paths frequently come from Windows-authored files.
func baseName(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}
