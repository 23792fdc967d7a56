// Package pkg provides the libraries behind the depends dependency analyzer.
//
// # Overview
//
// Depends builds the dependency graph of a .NET project, a solution, or a
// published NuGet package. Nodes are solutions, projects, packages and
// assemblies; edges point from a dependent to its dependency. The pkg
// directory is organized into four areas:
//
//  1. Model - [graph] (nodes, edges, builder, cycles) and [nuget] (versions,
//     ranges, target frameworks)
//  2. Inputs - [msbuild] (project and solution files), [lockfile]
//     (project.assets.json) and [integrations/nuget] (the v3 feed client)
//  3. Analysis - [resolve] (discovery and version selection) and [analyzer]
//     (the package, project and solution modes)
//  4. Outputs - [render] and [render/dot] (Graphviz), [io] (JSON) and
//     [server] (HTTP API)
//
// Supporting packages: [cache] (file, Redis and MongoDB response caches),
// [config] (layered settings), [errors] (coded errors), [httputil] (retry),
// [observability] and [observability/prom] (hooks and Prometheus metrics),
// and [buildinfo].
//
// # Data Flow
//
//	project.csproj ──► msbuild ──► lockfile ─┐
//	                                          ├─► analyzer ──► graph ──► render/dot, io, server
//	package id+version ──► resolve ◄── feed ─┘
//
// # Quick Start
//
//	backend, _ := cache.Open(ctx, cache.Config{Backend: "file", Dir: dir})
//	a := analyzer.New(analyzer.Options{
//	    Sources: []resolve.Source{nuget.NewClient(backend, 24*time.Hour, "")},
//	})
//	g, err := a.AnalyzePackage(ctx, "Serilog", "3.1.1", "net6.0")
//	if err != nil {
//	    return err
//	}
//	dot.Write(os.Stdout, g, dot.Options{})
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/graph
// [nuget]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/nuget
// [msbuild]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/msbuild
// [lockfile]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/lockfile
// [integrations/nuget]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/integrations/nuget
// [resolve]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/resolve
// [analyzer]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/analyzer
// [render]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/render
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/render/dot
// [io]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/io
// [server]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/observability/prom
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/depends/pkg/buildinfo
package pkg
