package collect

import (
	"maps"

	"github.com/teletha/bee-sub002/pkg/artifact"
)

// ClassicManager applies the root's dependency management to transitive
// dependencies, the way Maven 2 did: only management declared at the top of
// the graph is honored and direct dependencies are never managed.
type ClassicManager struct {
	depth   int
	managed *managedSet
}

type managedSet struct {
	versions   map[string]string
	scopes     map[string]artifact.Scope
	optionals  map[string]bool
	exclusions map[string][]artifact.Exclusion
}

// NewClassicManager creates a ClassicManager for the top of a graph.
func NewClassicManager() ClassicManager { return ClassicManager{} }

func (m ClassicManager) Manage(dep artifact.Dependency) *Management {
	if m.depth < 2 || m.managed == nil {
		return nil
	}
	key := dep.Key()
	var mg Management
	found := false
	if v, ok := m.managed.versions[key]; ok {
		mg.Version, found = v, true
	}
	if s, ok := m.managed.scopes[key]; ok {
		mg.Scope, found = s, true
	}
	if o, ok := m.managed.optionals[key]; ok {
		mg.Optional, found = &o, true
	}
	if ex, ok := m.managed.exclusions[key]; ok {
		mg.Exclusions = append(append([]artifact.Exclusion(nil), dep.Exclusions...), ex...)
		found = true
	}
	if !found {
		return nil
	}
	return &mg
}

func (m ClassicManager) Derive(ctx DeriveContext) DependencyManager {
	switch {
	case m.depth >= 2:
		return m
	case m.depth == 1:
		return ClassicManager{depth: 2, managed: m.managed}
	}
	set := m.managed
	for _, md := range ctx.Managed {
		if set == nil {
			set = &managedSet{
				versions:   map[string]string{},
				scopes:     map[string]artifact.Scope{},
				optionals:  map[string]bool{},
				exclusions: map[string][]artifact.Exclusion{},
			}
		} else if set == m.managed {
			set = set.clone()
		}
		key := md.Key()
		if _, ok := set.versions[key]; !ok && md.Artifact.Version != "" {
			set.versions[key] = md.Artifact.Version
		}
		if _, ok := set.scopes[key]; !ok && md.Scope != "" {
			set.scopes[key] = md.Scope
		}
		if _, ok := set.optionals[key]; !ok && md.Optional {
			set.optionals[key] = true
		}
		if len(md.Exclusions) > 0 {
			set.exclusions[key] = append(set.exclusions[key], md.Exclusions...)
		}
	}
	return ClassicManager{depth: 1, managed: set}
}

func (s *managedSet) clone() *managedSet {
	c := &managedSet{
		versions:   maps.Clone(s.versions),
		scopes:     maps.Clone(s.scopes),
		optionals:  maps.Clone(s.optionals),
		exclusions: make(map[string][]artifact.Exclusion, len(s.exclusions)),
	}
	for k, v := range s.exclusions {
		c.exclusions[k] = append([]artifact.Exclusion(nil), v...)
	}
	return c
}
