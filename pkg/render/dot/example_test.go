package dot_test

import (
	"os"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/render/dot"
)

func ExampleWrite() {
	app := graph.NewProject("src/App/App.csproj")
	serilog := graph.NewPackage("Serilog", "3.1.1")
	g := graph.NewBuilder(app).
		AddNode(serilog).
		AddEdge(graph.NewLabeledEdge(app, serilog, "3.1.1")).
		Build()

	_ = dot.Write(os.Stdout, g, dot.Options{})
	// Output:
	// digraph "depends" {
	//   rankdir=LR;
	//   "App.csproj" -> "Serilog" [label="3.1.1", color="blue"];
	//   "Serilog" [label="Serilog.3.1.1", style=filled, fillcolor=blue, shape=box];
	//   "App.csproj" [label="App.csproj", style=filled, fillcolor=white];
	// }
}
