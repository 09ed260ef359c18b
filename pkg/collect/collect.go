package collect

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/version"
)

const (
	DefaultTimeout = 60 * time.Second // Default wait for the whole graph
)

// DefaultThreads returns the default worker count, twice the number of
// usable CPUs.
func DefaultThreads() int { return 2 * runtime.GOMAXPROCS(0) }

// Options configures a Collector.
type Options struct {
	Threads int           // Concurrent resolution tasks (default: 2x CPUs)
	Timeout time.Duration // Wait for quiescence before failing (default: 60s)
	Logger  *log.Logger   // Debug output (default: discard)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Threads <= 0 {
		opts.Threads = DefaultThreads()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return opts
}

// Request describes what to collect.
//
// If Root is set its version is resolved, its descriptor is read and the
// descriptor's dependencies are merged under Dependencies. Otherwise
// RootArtifact (optional) only labels the root of the bare Dependencies list.
type Request struct {
	Root         *artifact.Dependency
	RootArtifact *artifact.Artifact
	Dependencies []artifact.Dependency
	Managed      []artifact.Dependency
	Repositories []artifact.Repository
	Context      string
}

// Session holds the policies of one collection. Nil policies are disabled.
type Session struct {
	Selector    DependencySelector
	Manager     DependencyManager
	Traverser   DependencyTraverser
	Filter      VersionFilter
	Transformer GraphTransformer

	// IgnoreDescriptorRepositories keeps repositories declared by
	// descriptors out of the search path.
	IgnoreDescriptorRepositories bool

	// Pool memoizes repository reads and child lists for one run; a fresh
	// pool is used when nil. A pool must not outlive its run: failures and
	// subtrees it stored are not reported again by a later run.
	Pool *Pool
}

// Result is the outcome of a collection. Root is nil when the root could
// not be resolved or the collection timed out; in the latter case workers
// may still be writing to the abandoned tree, so only Errors and Stats are
// returned.
type Result struct {
	Request *Request
	Root    *Node
	Errors  []error
	Stats   Stats
}

// Stats counts the work a collection performed.
type Stats struct {
	Nodes           int64
	RangeRequests   int64
	DescriptorReads int64
	PoolHits        int64
	PoolMisses      int64
	Duration        time.Duration
}

// RangeRequest asks for the candidate versions of an artifact.
type RangeRequest struct {
	Artifact     artifact.Artifact
	Repositories []artifact.Repository
	Context      string
}

// RangeResult lists candidate versions in ascending order.
type RangeResult struct {
	Constraint version.Constraint
	Versions   []version.Version

	// Repositories maps a version string to the repository it was found in.
	Repositories map[string]artifact.Repository
}

// Highest returns the last candidate.
func (r *RangeResult) Highest() (version.Version, bool) {
	if len(r.Versions) == 0 {
		return version.Version{}, false
	}
	return r.Versions[len(r.Versions)-1], true
}

// DescriptorRequest asks for an artifact's descriptor.
type DescriptorRequest struct {
	Artifact     artifact.Artifact
	Repositories []artifact.Repository
	Context      string
}

// DescriptorResult is an artifact's declared metadata.
//
// When the requested artifact was relocated, Artifact is the final
// coordinate and Relocations lists the coordinates passed through.
type DescriptorResult struct {
	Artifact     artifact.Artifact
	Relocations  []artifact.Artifact
	Aliases      []artifact.Artifact
	Dependencies []artifact.Dependency
	Managed      []artifact.Dependency
	Repositories []artifact.Repository
	Properties   map[string]string
}

// VersionRangeResolver expands version constraints.
type VersionRangeResolver interface {
	ResolveVersionRange(ctx context.Context, req RangeRequest) (*RangeResult, error)
}

// DescriptorReader reads artifact descriptors. Implementations follow
// relocations themselves and must detect relocation cycles.
type DescriptorReader interface {
	ReadDescriptor(ctx context.Context, req DescriptorRequest) (*DescriptorResult, error)
}

// RepositoryManager merges repository lists.
type RepositoryManager interface {
	AggregateRepositories(dominant, recessive []artifact.Repository) []artifact.Repository
}

// GraphTransformer rewrites a collected graph.
type GraphTransformer interface {
	Transform(ctx context.Context, root *Node) (*Node, error)
}

// TransformerFunc adapts a function to GraphTransformer.
type TransformerFunc func(ctx context.Context, root *Node) (*Node, error)

func (f TransformerFunc) Transform(ctx context.Context, root *Node) (*Node, error) {
	return f(ctx, root)
}
