package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/depends/pkg/graph"
)

// FormatVersion is written to every export and checked on import.
const FormatVersion = 1

type document struct {
	Version int    `json:"version"`
	Root    string `json:"root"`
	Nodes   []node `json:"nodes"`
	Edges   []edge `json:"edges"`
}

type node struct {
	ID      string     `json:"id"`
	Kind    graph.Kind `json:"kind"`
	Version string     `json:"version,omitempty"`
}

type edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// WriteJSON encodes g as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] into an equal graph.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := document{
		Version: FormatVersion,
		Root:    g.Root().ID,
		Nodes:   make([]node, len(nodes)),
		Edges:   make([]edge, len(edges)),
	}

	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Kind: n.Kind, Version: n.Version}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.Start.ID, To: e.End.ID, Label: e.Label}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
