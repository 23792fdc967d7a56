// Package dot writes dependency graphs in Graphviz DOT format and renders
// them to SVG, PDF and PNG.
//
// The text output is deterministic: edges appear in [render.Walk] order and
// nodes are grouped by kind, so two runs over the same graph produce
// byte-identical files.
//
//	digraph "depends" {
//	  rankdir=LR;
//	  "App.csproj" -> "Newtonsoft.Json" [label="13.0.1", color="blue"];
//	  "App.csproj" -> "Lib.csproj";
//	  "Newtonsoft.Json" [label="Newtonsoft.Json.13.0.1", style=filled, fillcolor=blue, shape=box];
//	  ...
//	}
//
// [RenderSVG] lays the DOT out in-process with go-graphviz; [RenderPDF] and
// [RenderPNG] additionally need rsvg-convert on the PATH.
package dot
