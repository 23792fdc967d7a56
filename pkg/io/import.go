package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	derrors "github.com/matzehuels/depends/pkg/errors"
	"github.com/matzehuels/depends/pkg/graph"
)

// ReadJSON decodes a graph written by [WriteJSON].
//
// Unlike [graph.Builder], ReadJSON validates its input: every node needs a
// non-empty id and a known kind, the root must be one of the nodes, and both
// endpoints of every edge must be nodes. Violations are INVALID_INPUT errors.
// Node ids are matched case-insensitively, as everywhere else.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode graph")
	}
	if doc.Version != FormatVersion {
		return nil, derrors.New(derrors.ErrCodeInvalidInput, "unsupported graph format version %d", doc.Version)
	}

	nodes := make(map[string]graph.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		kind, err := graph.ParseKind(string(n.Kind))
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "node %s", n.ID)
		}
		nd := graph.Node{ID: n.ID, Kind: kind, Version: n.Version}
		if err := nd.Validate(); err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
		nodes[nd.Key()] = nd
	}

	lookup := func(id string) (graph.Node, error) {
		n, ok := nodes[graph.Node{ID: id}.Key()]
		if !ok {
			return graph.Node{}, derrors.New(derrors.ErrCodeInvalidInput, "unknown node %q", id)
		}
		return n, nil
	}

	root, err := lookup(doc.Root)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	b := graph.NewBuilder(root)
	for _, n := range doc.Nodes {
		b.AddNode(nodes[graph.Node{ID: n.ID}.Key()])
	}
	for _, e := range doc.Edges {
		from, err := lookup(e.From)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		to, err := lookup(e.To)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
		b.AddEdge(graph.NewLabeledEdge(from, to, e.Label))
	}
	return b.Build(), nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
