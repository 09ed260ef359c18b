package collect

import "github.com/teletha/bee-sub002/pkg/artifact"

// FatArtifactTraverser expands every dependency except fat artifacts, which
// already bundle their dependencies.
type FatArtifactTraverser struct{}

func (FatArtifactTraverser) Traverse(dep artifact.Dependency) bool {
	return dep.Artifact.Property(artifact.PropIncludesDependencies) != "true"
}

func (t FatArtifactTraverser) Derive(DeriveContext) DependencyTraverser { return t }

// StaticTraverser returns the same decision for every dependency.
type StaticTraverser struct {
	Expand bool
}

func (t StaticTraverser) Traverse(artifact.Dependency) bool { return t.Expand }

func (t StaticTraverser) Derive(DeriveContext) DependencyTraverser { return t }
