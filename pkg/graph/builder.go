package graph

import "maps"

// Builder accumulates nodes and edges for a single assembler pass.
//
// All insert operations are idempotent: inserting a node whose identity is
// already present keeps the stored node unchanged, and inserting an edge equal
// to a stored edge is a no-op. Builder does not check that edge endpoints
// exist; callers add nodes before or alongside their edges.
//
// The zero value is not usable - use [NewBuilder]. Builder is owned by one
// goroutine and is not safe for concurrent use.
type Builder struct {
	root  Node
	nodes map[string]Node
	edges map[EdgeKey]Edge
}

// NewBuilder creates a builder whose node set is seeded with root.
func NewBuilder(root Node) *Builder {
	return &Builder{
		root:  root,
		nodes: map[string]Node{root.Key(): root},
		edges: make(map[EdgeKey]Edge),
	}
}

// Root returns the node the builder was created with.
func (b *Builder) Root() Node { return b.root }

// AddNode inserts n unless a node with the same identity exists.
func (b *Builder) AddNode(n Node) *Builder {
	if _, ok := b.nodes[n.Key()]; !ok {
		b.nodes[n.Key()] = n
	}
	return b
}

// AddNodes inserts every node in ns.
func (b *Builder) AddNodes(ns ...Node) *Builder {
	for _, n := range ns {
		b.AddNode(n)
	}
	return b
}

// AddEdge inserts e unless an equal edge exists.
func (b *Builder) AddEdge(e Edge) *Builder {
	if _, ok := b.edges[e.Key()]; !ok {
		b.edges[e.Key()] = e
	}
	return b
}

// AddEdges inserts every edge in es.
func (b *Builder) AddEdges(es ...Edge) *Builder {
	for _, e := range es {
		b.AddEdge(e)
	}
	return b
}

// Merge inserts every node and edge of g. The builder's root is unchanged.
func (b *Builder) Merge(g *Graph) *Builder {
	b.AddNodes(g.Nodes()...)
	b.AddEdges(g.Edges()...)
	return b
}

// Build snapshots the accumulated state into an immutable [Graph].
//
// The returned graph shares no state with the builder, so calling Build twice
// without intervening mutation yields two equal graphs.
func (b *Builder) Build() *Graph {
	return newGraph(b.root, maps.Clone(b.nodes), maps.Clone(b.edges))
}
