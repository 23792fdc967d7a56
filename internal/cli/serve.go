package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depends/pkg/observability"
	"github.com/matzehuels/depends/pkg/observability/prom"
	"github.com/matzehuels/depends/pkg/server"
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	watch   bool // reload the graph file when it changes
	metrics bool // expose /metrics
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{metrics: true}

	cmd := &cobra.Command{
		Use:   "serve <graph.json>",
		Short: "Serve a saved graph over an HTTP JSON API",
		Long: `Serve a graph saved by "analyze -o graph.json" on a read-only HTTP API.

Routes:
  GET /api/graph                      the whole graph
  GET /api/stats                      node and edge counts, cycles
  GET /api/nodes                      every node
  GET /api/nodes/{key}                one node
  GET /api/nodes/{key}/outgoing       edges leaving a node (?kind= filter)
  GET /api/nodes/{key}/incoming       edges entering a node (?kind= filter)
  GET /api/dot, /api/svg              the Graphviz rendering
  GET /metrics                        Prometheus metrics`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, args[0], opts)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: 127.0.0.1:8080)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the graph when the file changes")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics on /metrics")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, path string, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}

	g, err := readGraph(path)
	if err != nil {
		return err
	}

	srvOpts := server.Options{Logger: logger}
	if opts.metrics {
		m := prom.New(prometheus.NewRegistry())
		m.Install()
		defer observability.Reset()
		srvOpts.Metrics = m.Handler()
	}
	srv := server.New(g, srvOpts)

	if opts.watch && path != "-" {
		go func() {
			err := watchFiles(ctx, logger, func() []string { return []string{path} }, func() error {
				g, err := readGraph(path)
				if err != nil {
					return err
				}
				srv.SetGraph(g)
				logger.Info("reloaded graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watch stopped", "error", err)
			}
		}()
	}

	printSuccess("Serving %s", g.Root().Label())
	printStats(g)
	printKeyValue("Address", "http://"+cfg.Serve.Addr)
	return srv.ListenAndServe(ctx, cfg.Serve.Addr)
}
