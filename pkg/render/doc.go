// Package render turns a dependency graph into the rooted, ordered form
// diagrams are drawn from.
//
// # Walk
//
// [Walk] traverses the graph depth-first from its root. At each node the
// outgoing edges are taken in a fixed order (assemblies, then packages,
// then projects, then solutions; ties broken by target and label), and
// every edge is consumed exactly once. Cycles therefore terminate: A↔B
// yields exactly the two edges A→B and B→A. Only edges reachable from the
// root are emitted.
//
// Package-ended edges keep their version-range label; all other edges are
// emitted unlabeled.
//
// # Diagram
//
// A [Diagram] bundles the walk with the node [Catalog] and the [Ranks]
// (shortest walk depth per node). It is the contract every consumer works
// from: the DOT writer in [dot], the terminal browser and the HTTP API.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG rendering with the external
// rsvg-convert tool (from librsvg).
//
// [dot]: github.com/matzehuels/depends/pkg/render/dot
package render
