package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Cycles returns the groups of mutually dependent nodes in g: every strongly
// connected component with more than one member, plus nodes with an edge to
// themselves. Each group is sorted by key and the groups are ordered by their
// first member.
//
// Cycles is informational. Renderers do not need it to terminate; see the
// render package's walk.
func Cycles(g *Graph) [][]Node {
	nodes := g.Nodes()
	ids := make(map[string]int64, len(nodes))
	dg := simple.NewDirectedGraph()
	for i, n := range nodes {
		ids[n.Key()] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}

	var groups [][]Node
	selfLoops := make(map[string]bool)
	for _, e := range g.Edges() {
		from, okF := ids[e.Start.Key()]
		to, okT := ids[e.End.Key()]
		if !okF || !okT {
			continue
		}
		if from == to {
			if !selfLoops[e.Start.Key()] {
				selfLoops[e.Start.Key()] = true
				groups = append(groups, []Node{nodes[from]})
			}
			continue
		}
		if !dg.HasEdgeFromTo(from, to) {
			dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
		}
	}

	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) < 2 {
			continue
		}
		group := make([]Node, len(scc))
		for i, n := range scc {
			group[i] = nodes[n.ID()]
		}
		slices.SortFunc(group, compareNodes)
		groups = append(groups, group)
	}

	slices.SortFunc(groups, func(a, b []Node) int { return compareNodes(a[0], b[0]) })
	return groups
}
