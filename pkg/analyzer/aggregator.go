package analyzer

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/depends/pkg/graph"
	"github.com/matzehuels/depends/pkg/msbuild"
)

// AnalyzeSolution analyzes every MSBuild project of a solution and merges
// them under one solution root, with an unlabeled edge to each project.
//
// The first failing project aborts the whole analysis; no partial graph is
// returned. The error keeps the member's error code.
func (a *Analyzer) AnalyzeSolution(ctx context.Context, solutionPath, framework string) (*graph.Graph, error) {
	return a.run(ctx, ModeSolution, solutionPath, func(logger *log.Logger) (*graph.Graph, error) {
		members, err := msbuild.ReadSolution(solutionPath)
		if err != nil {
			return nil, err
		}

		root := graph.NewSolution(solutionPath)
		b := graph.NewBuilder(root)
		for _, m := range members {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			logger.Info("analyzing project", "project", m.Name)
			g, err := a.assemble(ctx, logger.With("project", m.Name), m.Path, framework)
			if err != nil {
				return nil, fmt.Errorf("project %s: %w", m.Path, err)
			}
			b.Merge(g)
			b.AddEdge(graph.NewEdge(root, g.Root()))
		}
		return b.Build(), nil
	})
}
