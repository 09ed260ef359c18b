package collect

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/observability"
	"github.com/teletha/bee-sub002/pkg/version"
)

// Collector builds dependency graphs by resolving versions and reading
// descriptors concurrently.
//
// A Collector is stateless between calls and safe for concurrent use.
type Collector struct {
	ranges      VersionRangeResolver
	descriptors DescriptorReader
	repos       RepositoryManager
	opts        Options
}

// NewCollector creates a collector. repos may be nil, in which case
// repositories declared by descriptors are never added to the search path.
func NewCollector(ranges VersionRangeResolver, descriptors DescriptorReader, repos RepositoryManager, opts Options) *Collector {
	return &Collector{
		ranges:      ranges,
		descriptors: descriptors,
		repos:       repos,
		opts:        opts.WithDefaults(),
	}
}

// level is the state shared by all dependencies declared by one node.
type level struct {
	repos     []artifact.Repository
	selector  DependencySelector
	manager   DependencyManager
	traverser DependencyTraverser
	filter    VersionFilter
	parent    *Node
	path      []string // artifacts from the root down to parent
}

// run is one CollectDependencies call.
type run struct {
	c       *Collector
	session *Session
	req     *Request
	pool    *Pool
	logger  *log.Logger

	ctx    context.Context
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	flight singleflight.Group

	mu   sync.Mutex
	errs []error

	nodes           atomic.Int64
	rangeRequests   atomic.Int64
	descriptorReads atomic.Int64
}

// CollectDependencies builds the dependency graph described by req.
//
// Non-fatal problems (unresolvable ranges, unreadable descriptors) are
// collected and returned together with the partial graph as a
// *CollectionError. A failure to resolve the root, or a timeout, leaves
// Result.Root nil. When ctx is cancelled the context's error is returned.
func (c *Collector) CollectDependencies(ctx context.Context, session *Session, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("collect: nil request")
	}
	if session == nil {
		session = &Session{}
	}
	start := time.Now()
	result := &Result{Request: req}

	pool := session.Pool
	if pool == nil {
		pool = NewPool()
	}
	hits, misses := pool.ChildHits(), pool.ChildMisses()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		c:       c,
		session: session,
		req:     req,
		pool:    pool,
		logger:  c.opts.Logger.With("run", uuid.NewString()[:8]),
		ctx:     runCtx,
		sem:     semaphore.NewWeighted(int64(c.opts.Threads)),
	}

	root, deps, managed, repos, err := r.resolveRoot(req)
	if err != nil {
		result.Errors = []error{err}
		result.Stats = r.stats(start, pool, hits, misses)
		return result, &CollectionError{Result: result, Errs: result.Errors}
	}

	label := root.String()
	observability.Collect().OnCollectStart(ctx, label, len(deps))
	r.logger.Debug("collecting", "root", label, "dependencies", len(deps), "threads", c.opts.Threads)

	dctx := DeriveContext{Dependency: root.Dependency, Managed: managed}
	if root.Dependency != nil {
		dctx.Artifact = &root.Artifact
	}
	top := &level{
		repos:     repos,
		selector:  deriveSelector(session.Selector, dctx),
		manager:   deriveManager(session.Manager, dctx),
		traverser: deriveTraverser(session.Traverser, dctx),
		filter:    deriveFilter(session.Filter, dctx),
		parent:    root,
	}
	if root.Dependency != nil {
		top.path = []string{root.Artifact.String()}
	}
	r.process(deps, top)

	if err := r.wait(ctx, cancel); err != nil {
		result.Stats = r.stats(start, pool, hits, misses)
		observability.Collect().OnCollectComplete(ctx, label, 0, result.Stats.Duration, err)
		if !errors.Is(err, ErrTimeout) {
			return result, err
		}
		r.logger.Warn("collection timed out", "root", label, "after", c.opts.Timeout)
		result.Errors = append(r.recorded(), ErrTimeout)
		return result, &CollectionError{Result: result, Errs: result.Errors}
	}

	sortTree(root)
	result.Root = root
	result.Errors = r.recorded()
	result.Stats = r.stats(start, pool, hits, misses)

	if session.Transformer != nil {
		tstart := time.Now()
		transformed, err := session.Transformer.Transform(ctx, root)
		observability.Collect().OnTransformComplete(ctx, int(result.Stats.Nodes), time.Since(tstart), err)
		if err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			result.Root = transformed
		}
	}
	result.Stats.Duration = time.Since(start)

	observability.Collect().OnCollectComplete(ctx, label, int(result.Stats.Nodes), result.Stats.Duration, nil)
	r.logger.Debug("collected", "root", label, "nodes", result.Stats.Nodes, "errors", len(result.Errors), "took", result.Stats.Duration)

	if len(result.Errors) > 0 {
		return result, &CollectionError{Result: result, Errs: result.Errors}
	}
	return result, nil
}

// resolveRoot creates the root node and returns the direct dependencies,
// the managed dependencies and the repositories the root declares, each
// merged under the request's own lists.
func (r *run) resolveRoot(req *Request) (*Node, []artifact.Dependency, []artifact.Dependency, []artifact.Repository, error) {
	if req.Root == nil {
		root := NewNode(nil)
		if req.RootArtifact != nil {
			root.Artifact = *req.RootArtifact
		}
		root.Repositories = req.Repositories
		root.Context = req.Context
		return root, req.Dependencies, req.Managed, req.Repositories, nil
	}

	dep := *req.Root
	repos := req.Repositories
	var relocations []artifact.Artifact
	for {
		rr, err := r.resolveRange(dep.Artifact, repos)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		versions, err := filterVersions(dep, rr, r.session.Filter)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		v := versions[len(versions)-1]
		dep = dep.WithArtifact(dep.Artifact.WithVersion(v.String()))

		desc, err := r.descriptor(dep.Artifact, repos, dep.Artifact.LocalPath() != "")
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if len(desc.Relocations) > 0 && !desc.Artifact.Equal(dep.Artifact) {
			r.logger.Debug("root relocated", "from", dep.Artifact, "to", desc.Artifact)
			relocations = append(relocations, desc.Relocations...)
			dep = dep.WithArtifact(desc.Artifact)
			continue
		}

		if !r.session.IgnoreDescriptorRepositories && r.c.repos != nil {
			repos = r.c.repos.AggregateRepositories(repos, desc.Repositories)
		}
		root := NewNode(r.pool.InternDependency(dep))
		root.Version = v
		root.Constraint = rr.Constraint
		root.Relocations = relocations
		root.Aliases = desc.Aliases
		root.Repositories = req.Repositories
		root.Context = req.Context
		r.nodes.Add(1)

		deps := MergeDependencies(req.Dependencies, desc.Dependencies)
		managed := MergeDependencies(req.Managed, desc.Managed)
		return root, deps, managed, repos, nil
	}
}

// process schedules one task per declared dependency.
func (r *run) process(deps []artifact.Dependency, lv *level) {
	for i, d := range deps {
		r.submit(func() { r.processDependency(lv, d, i, nil) })
	}
}

// submit runs fn on its own goroutine once a worker slot is free.
func (r *run) submit(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(r.ctx, 1); err != nil {
			return
		}
		defer r.sem.Release(1)
		defer func() {
			if p := recover(); p != nil {
				r.record(fmt.Errorf("collect: panic: %v\n%s", p, debug.Stack()))
			}
		}()
		fn()
	}()
}

// wait blocks until every scheduled task finished, the timeout elapsed or
// ctx was cancelled.
func (r *run) wait(ctx context.Context, cancel context.CancelFunc) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	timer := time.NewTimer(r.c.opts.Timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		cancel()
		return ErrTimeout
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

func (r *run) processDependency(lv *level, dep artifact.Dependency, index int, relocations []artifact.Artifact) {
	if r.ctx.Err() != nil {
		return
	}

	var pre Premanaged
	if lv.manager != nil {
		dep, pre = lv.manager.Manage(dep).apply(dep)
	}
	if lv.selector != nil && !lv.selector.Select(dep) {
		return
	}

	noDescriptor := dep.Artifact.LocalPath() != ""
	traverse := !noDescriptor && (lv.traverser == nil || lv.traverser.Traverse(dep))

	rr, err := r.resolveRange(dep.Artifact, lv.repos)
	if err != nil {
		r.record(err)
		return
	}
	versions, err := filterVersions(dep, rr, lv.filter)
	if err != nil {
		r.record(err)
		return
	}

	for _, v := range versions {
		d := dep.WithArtifact(dep.Artifact.WithVersion(v.String()))
		desc, err := r.descriptor(d.Artifact, lv.repos, noDescriptor)
		if err != nil {
			continue
		}

		if len(desc.Relocations) > 0 && !desc.Artifact.Equal(d.Artifact) {
			r.logger.Debug("relocated", "from", d.Artifact, "to", desc.Artifact)
			r.processDependency(lv, d.WithArtifact(desc.Artifact), index, append(slices.Clone(relocations), desc.Relocations...))
			continue
		}

		interned := r.pool.InternDependency(d.WithArtifact(desc.Artifact))
		child := NewNode(interned)
		child.Version = v
		child.Constraint = rr.Constraint
		child.Relocations = relocations
		child.Aliases = desc.Aliases
		child.Repositories = lv.repos
		if repo, ok := rr.Repositories[v.String()]; ok {
			child.Repositories = []artifact.Repository{repo}
		}
		child.Context = r.req.Context
		child.Index = index
		child.Premanaged = pre
		r.nodes.Add(1)

		id := interned.Artifact.String()
		if !traverse || len(desc.Dependencies) == 0 || slices.Contains(lv.path, id) {
			lv.parent.ChildList().Append(child)
			continue
		}

		dctx := DeriveContext{Artifact: &interned.Artifact, Dependency: interned, Managed: desc.Managed}
		sub := &level{
			repos:     lv.repos,
			selector:  deriveSelector(lv.selector, dctx),
			manager:   deriveManager(lv.manager, dctx),
			traverser: deriveTraverser(lv.traverser, dctx),
			filter:    deriveFilter(lv.filter, dctx),
			parent:    child,
			path:      append(slices.Clip(lv.path), id),
		}
		if !r.session.IgnoreDescriptorRepositories && r.c.repos != nil {
			sub.repos = r.c.repos.AggregateRepositories(lv.repos, desc.Repositories)
		}

		if key, ok := NewChildrenKey(interned.Artifact, sub.repos, sub.selector, sub.manager, sub.traverser, sub.filter); ok {
			if shared, loaded := r.pool.LoadOrStoreChildren(key, child.ChildList()); loaded {
				child.ShareChildren(shared)
				lv.parent.ChildList().Append(child)
				continue
			}
		}
		lv.parent.ChildList().Append(child)
		r.process(desc.Dependencies, sub)
	}
}

// resolveRange expands a's version constraint, consulting the pool first.
// Concurrent requests for the same key share one resolver call.
func (r *run) resolveRange(a artifact.Artifact, repos []artifact.Repository) (*RangeResult, error) {
	key := RequestKey(a, repos)
	if rr, ok := r.pool.Constraint(key); ok {
		return rr, nil
	}
	v, err, _ := r.flight.Do("range|"+key, func() (any, error) {
		if rr, ok := r.pool.Constraint(key); ok {
			return rr, nil
		}
		r.rangeRequests.Add(1)
		rr, err := r.c.ranges.ResolveVersionRange(r.ctx, RangeRequest{Artifact: a, Repositories: repos, Context: r.req.Context})
		if err != nil {
			return nil, err
		}
		r.pool.PutConstraint(key, rr)
		return rr, nil
	})
	if err != nil {
		var rangeErr *VersionRangeError
		if errors.As(err, &rangeErr) {
			return nil, err
		}
		return nil, &VersionRangeError{Artifact: a, Constraint: a.Version, Err: err}
	}
	return v.(*RangeResult), nil
}

// descriptor reads a's descriptor, consulting the pool first. Failures are
// pooled too and recorded only by the call that first stored them.
func (r *run) descriptor(a artifact.Artifact, repos []artifact.Repository, noDescriptor bool) (*DescriptorResult, error) {
	if noDescriptor {
		return &DescriptorResult{Artifact: a}, nil
	}
	key := RequestKey(a, repos)
	if res, err, ok := r.pool.Descriptor(key); ok {
		return res, err
	}
	v, err, _ := r.flight.Do("descriptor|"+key, func() (any, error) {
		if res, err, ok := r.pool.Descriptor(key); ok {
			return res, err
		}
		r.descriptorReads.Add(1)
		start := time.Now()
		res, err := r.c.descriptors.ReadDescriptor(r.ctx, DescriptorRequest{Artifact: a, Repositories: repos, Context: r.req.Context})
		observability.Collect().OnDescriptorRead(r.ctx, a.Coordinate(), time.Since(start), err)
		if err != nil {
			if r.ctx.Err() != nil {
				return nil, err
			}
			var descErr *DescriptorError
			if !errors.As(err, &descErr) {
				err = &DescriptorError{Artifact: a, Err: err}
			}
			if r.pool.PutDescriptor(key, nil, err) {
				r.record(err)
			}
			return nil, err
		}
		r.pool.PutDescriptor(key, res, nil)
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DescriptorResult), nil
}

// filterVersions applies the version filter to a range result. A fixed
// version is never filtered.
func filterVersions(dep artifact.Dependency, rr *RangeResult, filter VersionFilter) ([]version.Version, error) {
	noVersions := &VersionRangeError{Artifact: dep.Artifact, Constraint: rr.Constraint.String(), Err: ErrNoVersions}
	if len(rr.Versions) == 0 {
		return nil, noVersions
	}
	if filter == nil || !rr.Constraint.IsRange() {
		return rr.Versions, nil
	}
	versions, err := filter.Filter(dep, slices.Clone(rr.Versions))
	if err != nil {
		return nil, &VersionRangeError{Artifact: dep.Artifact, Constraint: rr.Constraint.String(), Err: err}
	}
	if len(versions) == 0 {
		return nil, noVersions
	}
	return versions, nil
}

func (r *run) record(err error) {
	r.logger.Debug("collect error", "err", err)
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *run) recorded() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

func (r *run) stats(start time.Time, pool *Pool, hits, misses int64) Stats {
	return Stats{
		Nodes:           r.nodes.Load(),
		RangeRequests:   r.rangeRequests.Load(),
		DescriptorReads: r.descriptorReads.Load(),
		PoolHits:        pool.ChildHits() - hits,
		PoolMisses:      pool.ChildMisses() - misses,
		Duration:        time.Since(start),
	}
}

func deriveSelector(s DependencySelector, ctx DeriveContext) DependencySelector {
	if s == nil {
		return nil
	}
	return s.Derive(ctx)
}

func deriveManager(m DependencyManager, ctx DeriveContext) DependencyManager {
	if m == nil {
		return nil
	}
	return m.Derive(ctx)
}

func deriveTraverser(t DependencyTraverser, ctx DeriveContext) DependencyTraverser {
	if t == nil {
		return nil
	}
	return t.Derive(ctx)
}

func deriveFilter(f VersionFilter, ctx DeriveContext) VersionFilter {
	if f == nil {
		return nil
	}
	return f.Derive(ctx)
}
