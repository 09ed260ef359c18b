package collect

import (
	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/version"
)

// DeriveContext describes the tree level a policy is derived for.
//
// At the top of a collection Dependency is the request root (nil for a bare
// dependency list) and Managed holds the request's managed dependencies.
// Below that, Dependency is the node whose children are about to be
// processed and Managed holds its descriptor's managed dependencies.
type DeriveContext struct {
	Artifact   *artifact.Artifact
	Dependency *artifact.Dependency
	Managed    []artifact.Dependency
}

// Policies are compared with == when keying the children cache, so
// implementations must be comparable values (or pointers) and should return
// an equal value from Derive when nothing changes for the next level.

// DependencySelector decides which dependencies enter the graph.
type DependencySelector interface {
	Select(dep artifact.Dependency) bool
	Derive(ctx DeriveContext) DependencySelector
}

// DependencyManager applies dependency management to transitive
// dependencies.
type DependencyManager interface {
	// Manage returns the management to apply to dep, or nil.
	Manage(dep artifact.Dependency) *Management
	Derive(ctx DeriveContext) DependencyManager
}

// DependencyTraverser decides whether a dependency's own dependencies are
// expanded.
type DependencyTraverser interface {
	Traverse(dep artifact.Dependency) bool
	Derive(ctx DeriveContext) DependencyTraverser
}

// VersionFilter narrows the candidate versions of a version range. The
// input is sorted ascending and the output must stay sorted.
type VersionFilter interface {
	Filter(dep artifact.Dependency, versions []version.Version) ([]version.Version, error)
	Derive(ctx DeriveContext) VersionFilter
}

// Management holds the values a DependencyManager overrides. Zero fields
// leave the dependency unchanged.
type Management struct {
	Version    string
	Scope      artifact.Scope
	Optional   *bool
	Exclusions []artifact.Exclusion
}

// Premanaged records the values a node had before management was applied.
type Premanaged struct {
	Version  string
	Scope    artifact.Scope
	Optional *bool
}

// apply returns dep with m applied and the premanaged values it replaced.
func (m *Management) apply(dep artifact.Dependency) (artifact.Dependency, Premanaged) {
	var pre Premanaged
	if m == nil {
		return dep, pre
	}
	if m.Version != "" && m.Version != dep.Artifact.Version {
		pre.Version = dep.Artifact.Version
		dep = dep.WithArtifact(dep.Artifact.WithVersion(m.Version))
	}
	// system scope is never managed away
	if m.Scope != "" && m.Scope != dep.Scope && dep.Scope != artifact.System {
		pre.Scope = dep.Scope
		dep = dep.WithScope(m.Scope)
	}
	if m.Optional != nil && *m.Optional != dep.Optional {
		old := dep.Optional
		pre.Optional = &old
		dep = dep.WithOptional(*m.Optional)
	}
	if m.Exclusions != nil {
		dep = dep.WithExclusions(m.Exclusions)
	}
	return dep, pre
}
