package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depends/pkg/graph"
	graphio "github.com/matzehuels/depends/pkg/io"
)

// renderCommand creates the render command, which converts a graph saved
// by "analyze -o graph.json" into DOT, SVG, PDF or PNG without querying any
// feed.
func (c *CLI) renderCommand() *cobra.Command {
	var opts outputOpts

	cmd := &cobra.Command{
		Use:   "render <graph.json>",
		Short: "Render a saved dependency graph",
		Long: `Render a graph saved as JSON. Use "-" to read from stdin.

Examples:
  depends render graph.json -o graph.svg
  depends render graph.json --format dot --ranked
  depends analyze package Serilog 3.1.1 | depends render - -o serilog.png --scale 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], &opts)
		},
	}
	opts.register(cmd.Flags())

	return cmd
}

func runRender(cmd *cobra.Command, input string, opts *outputOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := opts.resolve(formatDOT)
	if err != nil {
		return err
	}

	g, err := readGraph(input)
	if err != nil {
		return err
	}
	logger.Debug("loaded graph", "root", g.Root().ID, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	prog := newProgress(logger)
	if err := opts.write(ctx, g, format); err != nil {
		return err
	}
	prog.done("Rendered " + format)

	if opts.path != "" {
		printSuccess("Wrote %s", opts.path)
		printStats(g)
	}
	return nil
}

// readGraph loads a JSON graph from path, or from stdin when path is "-".
func readGraph(path string) (*graph.Graph, error) {
	if path == "-" {
		return graphio.ReadJSON(os.Stdin)
	}
	return graphio.ImportJSON(path)
}
