package graph

import (
	"cmp"
	"maps"
	"slices"
	"strings"
)

// Graph is an immutable dependency graph produced by [Builder.Build].
//
// The root is always a member of the node set. Every edge endpoint is
// expected to be a member too; this is the builder's responsibility and is
// not re-validated here.
//
// Graph is safe for concurrent reads.
type Graph struct {
	root     Node
	nodes    map[string]Node
	edges    map[EdgeKey]Edge
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

func newGraph(root Node, nodes map[string]Node, edges map[EdgeKey]Edge) *Graph {
	g := &Graph{
		root:     root,
		nodes:    nodes,
		edges:    edges,
		outgoing: make(map[string][]Edge),
		incoming: make(map[string][]Edge),
	}
	for _, e := range g.Edges() {
		g.outgoing[e.Start.Key()] = append(g.outgoing[e.Start.Key()], e)
		g.incoming[e.End.Key()] = append(g.incoming[e.End.Key()], e)
	}
	return g
}

// Root returns the graph's root node.
func (g *Graph) Root() Node { return g.root }

// NodeCount returns the number of nodes, including the root.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the stored node whose identity matches id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[strings.ToLower(id)]
	return n, ok
}

// Contains reports whether a node with the same identity as n is present.
func (g *Graph) Contains(n Node) bool {
	_, ok := g.nodes[n.Key()]
	return ok
}

// Nodes returns all nodes ordered by kind, then key.
func (g *Graph) Nodes() []Node {
	nodes := slices.Collect(maps.Values(g.nodes))
	slices.SortFunc(nodes, compareNodes)
	return nodes
}

// Edges returns all edges ordered by start key, end kind, end key and label.
func (g *Graph) Edges() []Edge {
	edges := slices.Collect(maps.Values(g.edges))
	slices.SortFunc(edges, func(a, b Edge) int {
		return cmp.Or(
			cmp.Compare(a.Start.Key(), b.Start.Key()),
			CompareEdges(a, b),
		)
	})
	return edges
}

// Outgoing returns the edges starting at the node identified by id, in
// canonical order. The returned slice must not be modified.
func (g *Graph) Outgoing(id string) []Edge { return g.outgoing[strings.ToLower(id)] }

// Incoming returns the edges ending at the node identified by id.
// The returned slice must not be modified.
func (g *Graph) Incoming(id string) []Edge { return g.incoming[strings.ToLower(id)] }

// CompareEdges orders edges that share a start node: by end kind first, then
// end key, then label. This is the emission order used by renderers.
func CompareEdges(a, b Edge) int {
	return cmp.Or(
		cmp.Compare(a.End.Kind, b.End.Kind),
		cmp.Compare(a.End.Key(), b.End.Key()),
		cmp.Compare(a.Label, b.Label),
	)
}

func compareNodes(a, b Node) int {
	return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Key(), b.Key()))
}
