// Package graph provides the dependency graph model shared by every analyzer
// and renderer.
//
// # Overview
//
// A [Graph] has a root [Node], a set of nodes and a set of edges. Nodes are
// one of four kinds:
//
//   - [KindProject]: an analyzed project file (ID = file name)
//   - [KindPackage]: a NuGet package (ID = package id, plus a display version)
//   - [KindAssembly]: a leaf .dll reference (ID = file name)
//   - [KindSolution]: the synthetic root of a multi-project workspace
//
// # Identity
//
// Node identity is the ID compared case-insensitively, because package
// ecosystems are case-insensitive by convention. A graph contains at most one
// node per identity; the version of a package node is display state, not part
// of its identity.
//
// [Edge] identity is (start, end, label). The label is the version range the
// consumer requested, so the same pair of nodes may be connected by several
// edges when different consumers asked for different ranges.
//
// # Building
//
// Graphs are built with a [Builder] and are immutable afterwards:
//
//	b := graph.NewBuilder(graph.NewProject("App.csproj"))
//	pkg := graph.NewPackage("Newtonsoft.Json", "13.0.3")
//	b.AddNode(pkg)
//	b.AddEdge(graph.NewLabeledEdge(b.Root(), pkg, "13.0.3"))
//	g := b.Build()
//
// Inserts are idempotent and the first inserted node wins. The builder does
// not validate edge endpoints.
//
// # Concurrency
//
// Builders are single-owner. Built graphs are safe for concurrent reads.
package graph
