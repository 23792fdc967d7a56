package graph

import "fmt"

// Edge is a directed "depends on" relationship from Start to End.
//
// Label carries the originally requested version range, or is empty when not
// applicable. Edge identity is (Start, End, Label): two edges between the same
// nodes with different labels are distinct, so two consumers requesting
// different ranges of the same package both remain visible.
type Edge struct {
	Start Node
	End   Node
	Label string
}

// NewEdge creates an unlabeled edge.
func NewEdge(start, end Node) Edge {
	return Edge{Start: start, End: end}
}

// NewLabeledEdge creates an edge labeled with a requested version range.
func NewLabeledEdge(start, end Node, label string) Edge {
	return Edge{Start: start, End: end, Label: label}
}

// Key returns the normalized identity of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Start: e.Start.Key(), End: e.End.Key(), Label: e.Label}
}

// Equal reports whether e and other have the same identity.
func (e Edge) Equal(other Edge) bool { return e.Key() == other.Key() }

// String formats the edge as "start -[label]-> end", omitting the brackets
// for unlabeled edges.
func (e Edge) String() string {
	label := ""
	if e.Label != "" {
		label = "[" + e.Label + "]"
	}
	return fmt.Sprintf("%s -%s-> %s", e.Start, label, e.End)
}

// EdgeKey is the comparable identity of an [Edge].
type EdgeKey struct {
	Start string
	End   string
	Label string
}
