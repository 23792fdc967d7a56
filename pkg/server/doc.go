// Package server exposes a dependency graph over a read-only HTTP JSON API.
//
// # Routes
//
//	GET /api/graph                  walked diagram: nodes, edges, ranks
//	GET /api/nodes                  node catalog
//	GET /api/nodes/{key}            one node
//	GET /api/nodes/{key}/outgoing   walked edges starting at the node
//	GET /api/nodes/{key}/incoming   walked edges ending at the node
//	GET /api/stats                  counts per kind and dependency cycles
//	GET /api/dot                    Graphviz DOT source
//	GET /api/svg                    rendered SVG
//	GET /metrics                    Prometheus metrics, when configured
//
// Node keys are matched case-insensitively. The outgoing and incoming
// routes accept a repeated "kind" query parameter that keeps only edges
// whose end (outgoing) or start (incoming) node has one of the given kinds:
//
//	/api/nodes/app.csproj/outgoing?kind=package&kind=assembly
//
// Errors are JSON objects with "code" and "message" fields. Every response
// carries an X-Request-ID header.
//
// The served graph can be replaced while serving with [Server.SetGraph];
// requests in flight keep the graph they started with.
package server
