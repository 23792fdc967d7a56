// Package msbuild extracts what dependency analysis needs from MSBuild
// project and solution files.
//
// An [Evaluator] turns a project file into a [Result]: the target
// framework and runtime chosen for analysis, whether the project uses the
// modern SDK format, where restore writes its assets file, and the
// project's direct package and assembly references.
//
// [StaticEvaluator] reads the project XML directly instead of running
// MSBuild. It understands properties, $(Property) expansion, simple
// equality conditions and multi-targeting, which covers SDK-style projects
// as restore sees them. Imported targets other than the SDK itself are not
// followed.
//
// [ReadSolution] lists the member projects of a .sln or .slnx file.
package msbuild
