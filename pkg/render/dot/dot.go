package dot

import (
	"bufio"
	"bytes"
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/render"
)

// DefaultGraphName is the name written after "digraph".
const DefaultGraphName = "depends"

// Options configures DOT output.
type Options struct {
	GraphName string // Name of the digraph (default: "depends")

	// Ranked groups nodes of equal walk depth into rank=same subgraphs.
	Ranked bool
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.GraphName == "" {
		opts.GraphName = DefaultGraphName
	}
	return opts
}

var nodeStyles = map[graph.Kind]string{
	graph.KindProject:  "style=filled, fillcolor=white",
	graph.KindPackage:  "style=filled, fillcolor=blue, shape=box",
	graph.KindAssembly: "style=filled, fillcolor=grey",
	graph.KindSolution: "style=filled, fillcolor=red",
}

// Write writes g to w in DOT format.
func Write(w io.Writer, g *graph.Graph, opts Options) error {
	return WriteDiagram(w, render.NewDiagram(g), opts)
}

// ToDOT returns g in DOT format.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	_ = Write(&buf, g, opts)
	return buf.String()
}

// WriteDiagram writes an already-walked diagram to w in DOT format.
func WriteDiagram(w io.Writer, d render.Diagram, opts Options) error {
	opts = opts.WithDefaults()
	bw := bufio.NewWriter(w)

	ids := make(map[string]string, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.Key] = n.ID
	}
	id := func(key string) string {
		if s, ok := ids[key]; ok {
			return s
		}
		return key
	}

	fmt.Fprintf(bw, "digraph %q {\n", opts.GraphName)
	bw.WriteString("  rankdir=LR;\n")

	for _, e := range d.Edges {
		if e.EndKind == graph.KindPackage {
			fmt.Fprintf(bw, "  %q -> %q [label=%q, color=\"blue\"];\n", id(e.StartKey), id(e.EndKey), e.Label)
			continue
		}
		fmt.Fprintf(bw, "  %q -> %q;\n", id(e.StartKey), id(e.EndKey))
	}

	for _, n := range d.Nodes {
		attrs := fmt.Sprintf("label=%q", n.DisplayLabel)
		if style, ok := nodeStyles[n.Kind]; ok {
			attrs += ", " + style
		}
		fmt.Fprintf(bw, "  %q [%s];\n", n.ID, attrs)
	}

	if opts.Ranked {
		writeRanks(bw, d.Ranks, id)
	}

	bw.WriteString("}\n")
	return bw.Flush()
}

func writeRanks(w *bufio.Writer, ranks map[string]int, id func(string) string) {
	byRank := make(map[int][]string)
	for key, r := range ranks {
		byRank[r] = append(byRank[r], key)
	}
	for _, r := range slices.Sorted(maps.Keys(byRank)) {
		keys := byRank[r]
		if len(keys) < 2 {
			continue
		}
		slices.SortFunc(keys, cmp.Compare[string])
		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = fmt.Sprintf("%q", id(k))
		}
		fmt.Fprintf(w, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}
}
