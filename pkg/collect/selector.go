package collect

import (
	"slices"
	"strings"
	"sync"

	"github.com/teletha/bee-sub002/pkg/artifact"
)

// ScopeSelector rejects transitive dependencies in the excluded scopes.
// Direct dependencies are always selected.
type ScopeSelector struct {
	transitive bool
	excluded   scopeMask
}

type scopeMask uint8

func maskOf(s artifact.Scope) scopeMask {
	s = s.Normalize()
	for i, sc := range artifact.Scopes {
		if sc == s {
			return 1 << i
		}
	}
	return 0
}

// NewScopeSelector creates a selector excluding the given scopes from
// transitive dependencies.
func NewScopeSelector(excluded ...artifact.Scope) ScopeSelector {
	var m scopeMask
	for _, s := range excluded {
		m |= maskOf(s)
	}
	return ScopeSelector{excluded: m}
}

func (s ScopeSelector) Select(dep artifact.Dependency) bool {
	return !s.transitive || s.excluded&maskOf(dep.Scope) == 0
}

func (s ScopeSelector) Derive(ctx DeriveContext) DependencySelector {
	if s.transitive || ctx.Dependency == nil {
		return s
	}
	s.transitive = true
	return s
}

// OptionalSelector rejects optional dependencies below the direct level.
type OptionalSelector struct {
	depth int
}

// NewOptionalSelector creates an OptionalSelector for the top of a graph.
func NewOptionalSelector() OptionalSelector { return OptionalSelector{} }

func (s OptionalSelector) Select(dep artifact.Dependency) bool {
	return s.depth < 2 || !dep.Optional
}

func (s OptionalSelector) Derive(DeriveContext) DependencySelector {
	if s.depth >= 2 {
		return s
	}
	return OptionalSelector{depth: s.depth + 1}
}

// ExclusionSelector rejects dependencies matched by the exclusions
// accumulated along the path from the root.
type ExclusionSelector struct {
	sets *exclusionSets
	key  string
	set  *exclusionSet
}

type exclusionSet struct {
	exclusions []artifact.Exclusion
}

// exclusionSets interns parsed sets so equal selectors derived from one
// root share a pointer. It lives as long as the selectors using it.
type exclusionSets struct {
	m sync.Map // string -> *exclusionSet
}

func (t *exclusionSets) intern(ex []artifact.Exclusion) (string, *exclusionSet) {
	keys := make([]string, 0, len(ex))
	seen := make(map[string]artifact.Exclusion, len(ex))
	for _, e := range ex {
		k := e.String()
		if _, ok := seen[k]; !ok {
			seen[k] = e
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	key := strings.Join(keys, "|")
	if v, ok := t.m.Load(key); ok {
		return key, v.(*exclusionSet)
	}
	set := &exclusionSet{exclusions: make([]artifact.Exclusion, len(keys))}
	for i, k := range keys {
		set.exclusions[i] = seen[k]
	}
	v, _ := t.m.LoadOrStore(key, set)
	return key, v.(*exclusionSet)
}

// NewExclusionSelector creates a selector with a global set of exclusions
// applied to the whole graph.
func NewExclusionSelector(global ...artifact.Exclusion) ExclusionSelector {
	s := ExclusionSelector{sets: &exclusionSets{}}
	if len(global) > 0 {
		s.key, s.set = s.sets.intern(global)
	}
	return s
}

func (s ExclusionSelector) Select(dep artifact.Dependency) bool {
	if s.set == nil {
		return true
	}
	for _, e := range s.set.exclusions {
		if e.Matches(dep.Artifact) {
			return false
		}
	}
	return true
}

func (s ExclusionSelector) Derive(ctx DeriveContext) DependencySelector {
	if ctx.Dependency == nil || len(ctx.Dependency.Exclusions) == 0 {
		return s
	}
	var merged []artifact.Exclusion
	if s.set != nil {
		merged = append(merged, s.set.exclusions...)
	}
	merged = append(merged, ctx.Dependency.Exclusions...)
	sets := s.sets
	if sets == nil {
		sets = &exclusionSets{}
	}
	key, set := sets.intern(merged)
	if key == s.key && s.sets != nil {
		return s
	}
	return ExclusionSelector{sets: sets, key: key, set: set}
}

// Exclusions returns the accumulated exclusions.
func (s ExclusionSelector) Exclusions() []artifact.Exclusion {
	if s.set == nil {
		return nil
	}
	return slices.Clone(s.set.exclusions)
}

// AndSelector selects a dependency only if both selectors do.
type AndSelector struct {
	left, right DependencySelector
}

// NewAndSelector combines selectors. Nil selectors are skipped; a single
// selector is returned unwrapped.
func NewAndSelector(selectors ...DependencySelector) DependencySelector {
	var out DependencySelector
	for _, s := range selectors {
		switch {
		case s == nil:
		case out == nil:
			out = s
		default:
			out = AndSelector{left: out, right: s}
		}
	}
	return out
}

func (s AndSelector) Select(dep artifact.Dependency) bool {
	return s.left.Select(dep) && s.right.Select(dep)
}

func (s AndSelector) Derive(ctx DeriveContext) DependencySelector {
	l, r := s.left.Derive(ctx), s.right.Derive(ctx)
	if samePolicy(l, s.left) && samePolicy(r, s.right) {
		return s
	}
	return AndSelector{left: l, right: r}
}
