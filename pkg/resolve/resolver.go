package resolve

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/buildinfo"
	"github.com/teletha/bee-sub002/pkg/cache"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/httputil"
	"github.com/teletha/bee-sub002/pkg/project"
	"github.com/teletha/bee-sub002/pkg/repository"
	"github.com/teletha/bee-sub002/pkg/transform"
)

// DefaultLibrariesTTL is how long resolved library sets stay cached.
const DefaultLibrariesTTL = time.Hour

// Options configures a Resolver.
type Options struct {
	Threads int           // Collector workers (default: 2x CPUs)
	Timeout time.Duration // Collection timeout (default: 60s)
	Logger  *log.Logger   // Debug output (default: discard)

	Cache        cache.Cache   // Response and library set cache (default: NullCache)
	Keyer        cache.Keyer   // Cache key builder (default: DefaultKeyer)
	ResponseTTL  time.Duration // Lifetime of cached repository files (default: 24h)
	LibrariesTTL time.Duration // Lifetime of cached library sets (default: 1h)
	Refresh      bool          // Ignore cached entries and replace them

	// Fetcher overrides the repository transport built from the options.
	Fetcher repository.Fetcher

	// Filter restricts candidate versions of ranges; nil keeps all.
	Filter collect.VersionFilter

	// DescriptorRepositories adds repositories declared in POMs to the
	// search path of their dependencies.
	DescriptorRepositories bool

	// KeepLosers keeps conflict losers in collected trees, marked with
	// their winner. Library sets never include them.
	KeepLosers bool
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.LibrariesTTL <= 0 {
		opts.LibrariesTTL = DefaultLibrariesTTL
	}
	if opts.Fetcher == nil {
		client := httputil.NewClient(httputil.ClientOptions{
			Cache:   opts.Cache,
			Keyer:   opts.Keyer,
			TTL:     opts.ResponseTTL,
			Headers: map[string]string{"User-Agent": buildinfo.UserAgent()},
		})
		opts.Fetcher = repository.NewTransport(client, opts.Refresh)
	}
	return opts
}

// Resolver collects dependency graphs and flattens them into library sets.
// It is safe for concurrent use. Each collection gets its own data pool;
// repository responses are shared through the cache instead.
type Resolver struct {
	opts      Options
	collector *collect.Collector
}

// New creates a Resolver.
func New(opts Options) *Resolver {
	opts = opts.WithDefaults()
	collector := collect.NewCollector(
		repository.NewRangeResolver(opts.Fetcher, opts.Logger),
		repository.NewDescriptorReader(opts.Fetcher, opts.Logger),
		repository.Manager{},
		collect.Options{Threads: opts.Threads, Timeout: opts.Timeout, Logger: opts.Logger},
	)
	return &Resolver{opts: opts, collector: collector}
}

// Session returns a new default collection session excluding the given
// artifacts everywhere in the graph. Sessions are not reused: a pool
// remembers failed descriptors and half-filled child lists of its run.
func (r *Resolver) Session(exclusions ...artifact.Exclusion) *collect.Session {
	refiner := transform.ContextRefiner{KeepLosers: r.opts.KeepLosers}
	return &collect.Session{
		Selector: collect.NewAndSelector(
			collect.NewOptionalSelector(),
			collect.NewScopeSelector(artifact.Test, artifact.Provided),
			collect.NewExclusionSelector(exclusions...),
		),
		Manager:   collect.NewClassicManager(),
		Traverser: collect.FatArtifactTraverser{},
		Filter:    r.opts.Filter,
		Transformer: transform.Chain{
			transform.Expand{},
			transform.ConflictMarker{},
			transform.ScopeCalculator{},
			transform.NearestResolver{},
			refiner,
		},
		IgnoreDescriptorRepositories: !r.opts.DescriptorRepositories,
		Pool:                         collect.NewPool(),
	}
}

// Collect runs the collector on req with the default session. Errors are
// classified into coded errors; the partial result is returned with them.
func (r *Resolver) Collect(ctx context.Context, req *collect.Request, exclusions ...artifact.Exclusion) (*collect.Result, error) {
	res, err := r.collector.CollectDependencies(ctx, r.Session(exclusions...), req)
	return res, Classify(err)
}

// Project collects the dependency tree of a project.
func (r *Resolver) Project(ctx context.Context, p *project.Project) (*collect.Result, error) {
	return r.Collect(ctx, p.Request(), p.Exclusions...)
}

// Dependency collects the dependency tree of a single library: its own
// descriptor is read and its dependencies become the direct ones.
func (r *Resolver) Dependency(ctx context.Context, dep artifact.Dependency, repos []artifact.Repository) (*collect.Result, error) {
	if len(repos) == 0 {
		repos = []artifact.Repository{artifact.Central}
	}
	return r.Collect(ctx, &collect.Request{Root: &dep, Repositories: repos, Context: "library"})
}

// ProjectLibraries returns the libraries a project needs for scope.
func (r *Resolver) ProjectLibraries(ctx context.Context, p *project.Project, scope artifact.Scope) ([]Library, error) {
	return r.libraries(ctx, p.Request(), scope, p.Exclusions)
}

// DependencyLibraries returns the libraries dep needs for scope, excluding
// dep itself.
func (r *Resolver) DependencyLibraries(ctx context.Context, dep artifact.Dependency, repos []artifact.Repository, scope artifact.Scope) ([]Library, error) {
	if len(repos) == 0 {
		repos = []artifact.Repository{artifact.Central}
	}
	return r.libraries(ctx, &collect.Request{Root: &dep, Repositories: repos, Context: "library"}, scope, nil)
}

func (r *Resolver) libraries(ctx context.Context, req *collect.Request, scope artifact.Scope, exclusions []artifact.Exclusion) ([]Library, error) {
	key := r.opts.Keyer.LibrariesKey(librariesKeyOpts(req, scope, exclusions))
	if !r.opts.Refresh {
		if data, ok, _ := r.opts.Cache.Get(ctx, key); ok {
			var libs []Library
			if json.Unmarshal(data, &libs) == nil {
				r.opts.Logger.Debug("library set from cache", "scope", scope, "libraries", len(libs))
				return libs, nil
			}
		}
	}

	res, err := r.collector.CollectDependencies(ctx, r.Session(exclusions...), req)
	if err != nil {
		return nil, Classify(err)
	}
	nodes := transform.Libraries(res.Root, scope)
	libs := make([]Library, len(nodes))
	for i, n := range nodes {
		libs[i] = newLibrary(n)
	}

	if data, err := json.Marshal(libs); err == nil {
		_ = r.opts.Cache.Set(ctx, key, data, r.opts.LibrariesTTL)
	}
	return libs, nil
}

func librariesKeyOpts(req *collect.Request, scope artifact.Scope, exclusions []artifact.Exclusion) cache.LibrariesKeyOpts {
	opts := cache.LibrariesKeyOpts{Scope: scope.String()}
	switch {
	case req.Root != nil:
		opts.Root = req.Root.ID()
	case req.RootArtifact != nil:
		opts.Root = req.RootArtifact.ID()
	}
	for _, d := range req.Dependencies {
		opts.Dependencies = append(opts.Dependencies, d.ID())
	}
	for _, d := range req.Managed {
		opts.Managed = append(opts.Managed, d.ID())
	}
	for _, e := range exclusions {
		opts.Exclusions = append(opts.Exclusions, e.String())
	}
	for _, repo := range req.Repositories {
		opts.Repositories = append(opts.Repositories, repo.ID+"="+repo.BaseURL())
	}
	return opts
}
