package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/cache"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/project"
	"github.com/teletha/bee-sub002/pkg/resolve"
)

// targetFlags select what a command collects: the project in a directory,
// or the artifact given as the first argument.
type targetFlags struct {
	projectDir string
	repos      []string
	noCentral  bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.projectDir, "project", "p", ".", "directory holding bee.toml or bee.yaml")
	cmd.Flags().StringSliceVarP(&f.repos, "repo", "r", nil, "repository URL searched for a coordinate (repeatable)")
	cmd.Flags().BoolVar(&f.noCentral, "no-central", false, "do not search Maven Central for a coordinate")
}

// target is a project or a single dependency with its repositories.
type target struct {
	project *project.Project
	dep     *artifact.Dependency
	repos   []artifact.Repository
}

func (f *targetFlags) target(args []string) (*target, error) {
	if len(args) == 0 {
		path, err := project.Find(f.projectDir)
		if err != nil {
			return nil, err
		}
		p, err := project.Load(path)
		if err != nil {
			return nil, err
		}
		return &target{project: p, repos: p.Repositories}, nil
	}

	a, err := project.ParseCoordinate(args[0])
	if err != nil {
		return nil, err
	}
	var repos []artifact.Repository
	for i, u := range f.repos {
		if err := errors.ValidateRepositoryURL(u); err != nil {
			return nil, err
		}
		repos = append(repos, artifact.Repository{ID: fmt.Sprintf("repo%d", i+1), URL: u})
	}
	if !f.noCentral {
		repos = append(repos, artifact.Central)
	}
	if len(repos) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no repositories to search: pass --repo or drop --no-central")
	}
	dep := artifact.NewDependency(a, artifact.Compile)
	return &target{dep: &dep, repos: repos}, nil
}

func (t *target) String() string {
	if t.project != nil {
		return t.project.Artifact.String()
	}
	return t.dep.Artifact.String()
}

func (t *target) collect(ctx context.Context, r *resolve.Resolver) (*collect.Result, error) {
	if t.project != nil {
		return r.Project(ctx, t.project)
	}
	return r.Dependency(ctx, *t.dep, t.repos)
}

func (t *target) libraries(ctx context.Context, r *resolve.Resolver, scope artifact.Scope) ([]resolve.Library, error) {
	if t.project != nil {
		return r.ProjectLibraries(ctx, t.project, scope)
	}
	return r.DependencyLibraries(ctx, *t.dep, t.repos, scope)
}

// newResolver builds a resolver from the settings. The returned function
// closes its cache.
func (c *CLI) newResolver(cmd *cobra.Command, keepLosers bool) (*resolve.Resolver, func(), error) {
	s := c.settings()
	store, err := c.openCache(cmd, s)
	if err != nil {
		return nil, nil, err
	}
	// Descriptor repositories change collected graphs without changing the
	// request, so their library sets live under their own keys.
	var keyer cache.Keyer
	if s.DescriptorRepositories {
		keyer = cache.NewScopedKeyer(nil, "descrepos:")
	}
	r := resolve.New(resolve.Options{
		Threads:                s.Threads,
		Timeout:                s.Timeout,
		Logger:                 c.Logger,
		Cache:                  store,
		Keyer:                  keyer,
		ResponseTTL:            s.CacheTTL,
		Refresh:                s.Refresh,
		DescriptorRepositories: s.DescriptorRepositories,
		KeepLosers:             keepLosers,
	})
	return r, func() { _ = store.Close() }, nil
}

// spin runs fn while a spinner is shown on an interactive stderr.
func spin[T any](cmd *cobra.Command, message string, fn func(context.Context) (T, error)) (T, error) {
	w := cmd.ErrOrStderr()
	if !interactive(w) {
		return fn(cmd.Context())
	}
	s := newSpinner(cmd.Context(), w, message)
	s.Start()
	defer s.Stop()
	return fn(cmd.Context())
}
