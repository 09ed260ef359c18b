package collect

import (
	"sync"
	"sync/atomic"

	"github.com/teletha/bee-sub002/pkg/artifact"
)

// Pool memoizes version ranges, descriptors and expanded child lists for
// one collection run, and interns artifact and dependency values.
//
// All methods are safe for concurrent use. Racing writers may compute the
// same entry twice; the first stored value wins and is what later readers
// see.
type Pool struct {
	constraints  sync.Map // string -> *RangeResult
	descriptors  sync.Map // string -> descriptorEntry
	children     sync.Map // ChildrenKey -> *Children
	artifacts    sync.Map // string -> artifact.Artifact
	dependencies sync.Map // string -> *artifact.Dependency

	hits   atomic.Int64
	misses atomic.Int64
}

// NewPool creates an empty pool.
func NewPool() *Pool { return &Pool{} }

// RequestKey keys version range and descriptor requests by the artifact
// (including its version or constraint) and the repositories searched.
func RequestKey(a artifact.Artifact, repos []artifact.Repository) string {
	return a.ID() + "@" + artifact.ReposKey(repos)
}

// Constraint returns a cached version range result.
func (p *Pool) Constraint(key string) (*RangeResult, bool) {
	v, ok := p.constraints.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*RangeResult), true
}

// PutConstraint caches a version range result.
func (p *Pool) PutConstraint(key string, r *RangeResult) {
	p.constraints.LoadOrStore(key, r)
}

type descriptorEntry struct {
	result *DescriptorResult
	err    error
}

// Descriptor returns a cached descriptor or the cached failure for key.
func (p *Pool) Descriptor(key string) (*DescriptorResult, error, bool) {
	v, ok := p.descriptors.Load(key)
	if !ok {
		return nil, nil, false
	}
	e := v.(descriptorEntry)
	return e.result, e.err, true
}

// PutDescriptor caches a descriptor, or the error reading it failed with.
// It reports whether this call stored the entry.
func (p *Pool) PutDescriptor(key string, r *DescriptorResult, err error) bool {
	_, loaded := p.descriptors.LoadOrStore(key, descriptorEntry{result: r, err: err})
	return !loaded
}

// ChildrenKey identifies an expanded child list: the same artifact reached
// through the same repositories with equal derived policies expands to the
// same children.
type ChildrenKey struct {
	artifact  string
	repos     string
	selector  DependencySelector
	manager   DependencyManager
	traverser DependencyTraverser
	filter    VersionFilter
}

// NewChildrenKey builds a children key. ok is false when one of the policies
// is not comparable, in which case the child list cannot be pooled.
func NewChildrenKey(a artifact.Artifact, repos []artifact.Repository, s DependencySelector, m DependencyManager, t DependencyTraverser, f VersionFilter) (key ChildrenKey, ok bool) {
	key = ChildrenKey{
		artifact:  a.ID(),
		repos:     artifact.ReposKey(repos),
		selector:  s,
		manager:   m,
		traverser: t,
		filter:    f,
	}
	return key, hashable(key)
}

// Children returns a pooled child list.
func (p *Pool) Children(key ChildrenKey) (*Children, bool) {
	v, ok := p.children.Load(key)
	if !ok {
		p.misses.Add(1)
		return nil, false
	}
	p.hits.Add(1)
	return v.(*Children), true
}

// PutChildren pools a child list.
func (p *Pool) PutChildren(key ChildrenKey, c *Children) {
	p.children.Store(key, c)
}

// LoadOrStoreChildren returns the pooled list for key if present. Otherwise
// it stores c and returns it with loaded false; the caller then owns filling
// c while others may already observe it.
func (p *Pool) LoadOrStoreChildren(key ChildrenKey, c *Children) (actual *Children, loaded bool) {
	v, loaded := p.children.LoadOrStore(key, c)
	if loaded {
		p.hits.Add(1)
	} else {
		p.misses.Add(1)
	}
	return v.(*Children), loaded
}

// InternArtifact returns the canonical instance of a.
func (p *Pool) InternArtifact(a artifact.Artifact) artifact.Artifact {
	v, _ := p.artifacts.LoadOrStore(a.ID(), a)
	return v.(artifact.Artifact)
}

// InternDependency returns the canonical instance of d. The dependency's
// artifact is interned as well.
func (p *Pool) InternDependency(d artifact.Dependency) *artifact.Dependency {
	id := d.ID()
	if v, ok := p.dependencies.Load(id); ok {
		return v.(*artifact.Dependency)
	}
	d.Artifact = p.InternArtifact(d.Artifact)
	v, _ := p.dependencies.LoadOrStore(id, &d)
	return v.(*artifact.Dependency)
}

// ChildHits returns how often a pooled child list was reused.
func (p *Pool) ChildHits() int64 { return p.hits.Load() }

// ChildMisses returns how often a child list had to be expanded.
func (p *Pool) ChildMisses() int64 { return p.misses.Load() }

// hashable reports whether v can be used as a map key.
func hashable(v any) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_ = v == v
	return true
}

// samePolicy compares two policies, treating incomparable values as
// different.
func samePolicy(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
