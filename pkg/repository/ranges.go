package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/version"
)

// RangeResolver expands version constraints against repository metadata.
type RangeResolver struct {
	fetcher Fetcher
	logger  *log.Logger
}

// NewRangeResolver creates a resolver reading metadata through f.
func NewRangeResolver(f Fetcher, logger *log.Logger) *RangeResolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &RangeResolver{fetcher: f, logger: logger}
}

// ResolveVersionRange returns the candidate versions of req.Artifact in
// ascending order. A soft version is returned as is without I/O. LATEST and
// RELEASE resolve to the single highest matching version.
func (r *RangeResolver) ResolveVersionRange(ctx context.Context, req collect.RangeRequest) (*collect.RangeResult, error) {
	a := req.Artifact
	c, err := version.ParseConstraint(a.Version)
	if err != nil {
		return nil, &collect.VersionRangeError{Artifact: a, Constraint: a.Version, Err: err}
	}
	if v, ok := c.Version(); ok {
		return &collect.RangeResult{Constraint: c, Versions: []version.Version{v}}, nil
	}

	found, err := r.available(ctx, a, req.Repositories)
	if err != nil {
		return nil, &collect.VersionRangeError{Artifact: a, Constraint: a.Version, Err: err}
	}

	res := &collect.RangeResult{Constraint: c, Repositories: make(map[string]artifact.Repository)}
	for raw, repo := range found {
		v, err := version.Parse(raw)
		if err != nil {
			r.logger.Debug("skipping unparsable version", "artifact", a.Coordinate(), "version", raw)
			continue
		}
		if c.Contains(v) {
			res.Versions = append(res.Versions, v)
			res.Repositories[v.String()] = repo
		}
	}
	slices.SortFunc(res.Versions, version.Compare)
	if c.IsMeta() && len(res.Versions) > 1 {
		res.Versions = res.Versions[len(res.Versions)-1:]
	}
	r.logger.Debug("resolved version range", "artifact", a.Coordinate(), "constraint", c, "candidates", len(res.Versions))
	return res, nil
}

// available unions the versions listed by every repository, remembering
// the first repository that listed each. It fails only when no repository
// answered and at least one failed for a reason other than a missing file.
func (r *RangeResolver) available(ctx context.Context, a artifact.Artifact, repos []artifact.Repository) (map[string]artifact.Repository, error) {
	found := make(map[string]artifact.Repository)
	var errs []error
	answered := false

	for _, repo := range repos {
		data, err := r.fetcher.Fetch(ctx, repo, metadataPath(a.GroupID, a.ArtifactID))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s: %w", repo.ID, err))
			}
			continue
		}
		md, err := ParseMetadata(data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", repo.ID, err))
			continue
		}
		answered = true
		for _, v := range md.Versioning.Versions {
			if _, ok := found[v]; !ok {
				found[v] = repo
			}
		}
	}
	if !answered && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return found, nil
}
