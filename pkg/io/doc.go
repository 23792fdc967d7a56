// Package io provides JSON import and export for dependency graphs.
//
// The analyzer never persists graphs itself; the CLI uses this package to
// write an analysis to a file the user chose, and to load it again for the
// render, browse and serve commands.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "root": "App.csproj",
//	  "nodes": [
//	    {"id": "Newtonsoft.Json", "kind": "Package", "version": "13.0.1"},
//	    {"id": "App.csproj", "kind": "Project"}
//	  ],
//	  "edges": [
//	    {"from": "App.csproj", "to": "Newtonsoft.Json", "label": "13.0.1"}
//	  ]
//	}
//
// Nodes and edges are written in the graph's canonical order, so exporting
// the same graph twice yields identical files. Kinds are "Project",
// "Package", "Assembly" and "Solution". Labels are omitted when empty.
package io
