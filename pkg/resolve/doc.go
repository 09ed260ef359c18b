// Package resolve turns projects and coordinates into library sets.
//
// [Resolver] wires the pieces of the dependency engine together: a
// repository transport with response caching, the version range resolver
// and POM reader, the concurrent collector with the default session
// policies, the conflict-resolving transformer chain and the scope
// flattening in [transform.Libraries]. Resolved library sets are cached
// under a key derived from every input that affects them.
//
// The default session mirrors Maven's: optional and test/provided
// dependencies of dependencies are not followed, project exclusions apply
// to the whole graph, root dependency management overrides transitive
// versions, fat artifacts are not traversed and repositories declared in
// POMs are ignored.
package resolve
