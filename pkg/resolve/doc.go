// Package resolve discovers the transitive dependency closure of a package
// and selects one version per package from it.
//
// # Discovery
//
// [Discover] walks dependencies concurrently, starting at a root identity.
// Each dependency is followed at the minimum version of its range, so the
// closure contains exactly the versions a lowest-wins restore could pick.
// A [Memo] guarantees that each identity is queried once even when many
// branches reach it at the same time. The fan-out runs in an errgroup; the
// number of in-flight queries is bounded by [Options.Concurrency].
//
// # Conflict resolution
//
// A [Solver] turns the closure into a [Selection]. [BacktrackingSolver]
// with [PolicyLowest] picks, for every required package, the lowest
// version that satisfies every range imposed by the other selected
// packages, and returns an [UnsatisfiableError] naming the offending
// constraints when no such set exists.
package resolve
