package collect

import "github.com/teletha/bee-sub002/pkg/artifact"

// MergeDependencies merges two dependency lists by artifact identity.
// Every dominant entry is kept; a recessive entry is appended only when no
// dominant entry has the same identity. Merging a list with itself returns
// it unchanged.
func MergeDependencies(dominant, recessive []artifact.Dependency) []artifact.Dependency {
	switch {
	case len(recessive) == 0:
		return dominant
	case len(dominant) == 0:
		return recessive
	}
	ids := make(map[string]struct{}, len(dominant))
	for _, d := range dominant {
		ids[d.Key()] = struct{}{}
	}
	out := make([]artifact.Dependency, len(dominant), len(dominant)+len(recessive))
	copy(out, dominant)
	for _, d := range recessive {
		if _, ok := ids[d.Key()]; !ok {
			out = append(out, d)
		}
	}
	return out
}
