// Package analyzer builds dependency graphs for .NET projects, solutions and
// published NuGet packages.
//
// # Entry Points
//
// An [Analyzer] has one method per kind of input, selected by the caller:
//
//   - [Analyzer.AnalyzePackage] resolves a package live against the
//     configured feeds: transitive discovery, lowest-wins conflict
//     resolution, then package downloads to find each package's assemblies.
//   - [Analyzer.AnalyzeProject] reads what restore already resolved for a
//     project from its project.assets.json.
//   - [Analyzer.AnalyzeSolution] runs the project analysis for every member
//     of a solution and merges the results under a solution root.
//
// The live and lock-derived paths share nothing but the graph model; their
// inputs differ too much for a common code path.
//
// # Errors
//
// Failures carry codes from the errors package: INVALID_INPUT for bad
// paths, ids, versions and frameworks; UNSUPPORTED_PROJECT for legacy
// (non-SDK) projects; MISSING_RESOLVED_STATE when restore has not run;
// METADATA_NOT_FOUND when the requested package is in no feed; and
// UNSATISFIABLE_CONSTRAINTS from the solver. Packages that are missing
// deeper in the closure are skipped, not reported.
package analyzer
