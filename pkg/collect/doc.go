// Package collect builds the dependency graph of an artifact or a list of
// declared dependencies.
//
// # Overview
//
// [Collector.CollectDependencies] walks the graph breadth-wise: every
// declared dependency becomes one task that applies dependency management,
// asks the session's [DependencySelector] whether to keep the dependency,
// expands its version constraint through a [VersionRangeResolver], reads
// the descriptor of each candidate version through a [DescriptorReader]
// and schedules the descriptor's own dependencies as new tasks. Tasks run
// concurrently, bounded by [Options].Threads, and the call returns once no
// task is left or [Options].Timeout elapsed.
//
// # Policies
//
// A [Session] carries four policies, each derived once per tree level:
//
//   - [DependencySelector] filters dependencies ([ScopeSelector],
//     [OptionalSelector], [ExclusionSelector], [AndSelector])
//   - [DependencyManager] overrides versions, scopes and exclusions of
//     transitive dependencies ([ClassicManager])
//   - [DependencyTraverser] decides whether to descend ([FatArtifactTraverser])
//   - [VersionFilter] narrows range candidates ([HighestVersionFilter],
//     [SnapshotVersionFilter], [SemverFilter])
//
// # Pooling
//
// Range results, descriptors (including failures) and child lists are
// memoized in a [Pool]. Two nodes for the same artifact reached through the
// same repositories with equal derived policies share one child list, so
// each distinct subtree is expanded once. The collected graph can therefore
// contain shared subtrees; a [GraphTransformer] such as the chain in
// package transform turns it back into a tree and resolves conflicts.
package collect
