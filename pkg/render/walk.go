package render

import "github.com/matzehuels/depends/pkg/graph"

// EdgeRecord is one edge as emitted by [Walk].
type EdgeRecord struct {
	StartKey string     `json:"start"`
	EndKey   string     `json:"end"`
	Label    string     `json:"label,omitempty"`
	EndKind  graph.Kind `json:"end_kind"`
}

// NodeInfo describes one node for display.
type NodeInfo struct {
	Key          string     `json:"key"`
	ID           string     `json:"id"`
	Kind         graph.Kind `json:"kind"`
	Version      string     `json:"version,omitempty"`
	DisplayLabel string     `json:"label"`
}

// Diagram is everything a renderer needs: the nodes, the walked edges and
// each node's rank.
type Diagram struct {
	Root  string         `json:"root"`
	Nodes []NodeInfo     `json:"nodes"`
	Edges []EdgeRecord   `json:"edges"`
	Ranks map[string]int `json:"ranks"`
}

// NewDiagram walks g once and catalogs its nodes.
func NewDiagram(g *graph.Graph) Diagram {
	w := walk(g)
	return Diagram{
		Root:  g.Root().Key(),
		Nodes: Catalog(g),
		Edges: w.edges,
		Ranks: w.ranks,
	}
}

// Node returns the catalog entry for key.
func (d Diagram) Node(key string) (NodeInfo, bool) {
	for _, n := range d.Nodes {
		if n.Key == key {
			return n, true
		}
	}
	return NodeInfo{}, false
}

// Walk returns the edges of g in canonical depth-first order from the root.
func Walk(g *graph.Graph) []EdgeRecord {
	return walk(g).edges
}

// Ranks returns, for every node reachable from the root, the smallest depth
// at which the walk reached it. The root has rank 0.
func Ranks(g *graph.Graph) map[string]int {
	return walk(g).ranks
}

// Catalog lists every node of g, ordered by kind then key.
func Catalog(g *graph.Graph) []NodeInfo {
	nodes := g.Nodes()
	out := make([]NodeInfo, len(nodes))
	for i, n := range nodes {
		out[i] = NodeInfo{
			Key:          n.Key(),
			ID:           n.ID,
			Kind:         n.Kind,
			Version:      n.Version,
			DisplayLabel: n.Label(),
		}
	}
	return out
}

type walker struct {
	g     *graph.Graph
	used  map[graph.EdgeKey]bool
	ranks map[string]int
	edges []EdgeRecord
}

func walk(g *graph.Graph) *walker {
	w := &walker{
		g:     g,
		used:  make(map[graph.EdgeKey]bool),
		ranks: make(map[string]int),
	}
	w.visit(g.Root(), 0)
	return w
}

func (w *walker) visit(n graph.Node, depth int) {
	if r, ok := w.ranks[n.Key()]; !ok || depth < r {
		w.ranks[n.Key()] = depth
	}

	// Outgoing is already in graph.CompareEdges order.
	for _, e := range w.g.Outgoing(n.ID) {
		if w.used[e.Key()] {
			continue
		}
		w.used[e.Key()] = true

		rec := EdgeRecord{StartKey: e.Start.Key(), EndKey: e.End.Key(), EndKind: e.End.Kind}
		if e.End.Kind == graph.KindPackage {
			rec.Label = e.Label
		}
		w.edges = append(w.edges, rec)
		w.visit(e.End, depth+1)
	}
}
