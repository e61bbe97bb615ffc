// Package deps implements the dependency resolution and availability engine.
//
// Given a language provider and a root package, [Build] walks the registry's
// dependency edges depth-first and produces a tree of [Node] values, each
// annotated with a distribution availability [Verdict]. A visit set keyed by
// (normalized name, version) collapses diamonds and cycles into
// back-reference nodes, bounding work to one expansion per distinct package.
// [Summarize] derives aggregate counts from a completed tree.
//
// Failure policy: only the root may fail the build. Any error while
// expanding a deeper node degrades that node to a missing or unknown
// verdict and the traversal continues, so one broken edge never voids an
// otherwise valid report.
package deps
