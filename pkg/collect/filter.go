package collect

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/version"
)

// HighestVersionFilter keeps only the highest candidate of a range.
type HighestVersionFilter struct{}

func (HighestVersionFilter) Filter(_ artifact.Dependency, versions []version.Version) ([]version.Version, error) {
	if len(versions) <= 1 {
		return versions, nil
	}
	return versions[len(versions)-1:], nil
}

func (f HighestVersionFilter) Derive(DeriveContext) VersionFilter { return f }

// SnapshotVersionFilter drops snapshot candidates.
type SnapshotVersionFilter struct{}

func (SnapshotVersionFilter) Filter(_ artifact.Dependency, versions []version.Version) ([]version.Version, error) {
	out := make([]version.Version, 0, len(versions))
	for _, v := range versions {
		if !v.IsSnapshot() {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f SnapshotVersionFilter) Derive(DeriveContext) VersionFilter { return f }

// SemverFilter keeps candidates satisfying a semantic version constraint
// such as ">= 1.2, < 2". Candidates that are not valid semantic versions
// are dropped.
type SemverFilter struct {
	expr string
	c    *semver.Constraints
}

// NewSemverFilter parses expr with Masterminds/semver.
func NewSemverFilter(expr string) (SemverFilter, error) {
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return SemverFilter{}, fmt.Errorf("invalid semver constraint %q: %w", expr, err)
	}
	return SemverFilter{expr: expr, c: c}, nil
}

func (f SemverFilter) Filter(_ artifact.Dependency, versions []version.Version) ([]version.Version, error) {
	if f.c == nil {
		return versions, nil
	}
	out := make([]version.Version, 0, len(versions))
	for _, v := range versions {
		sv, err := semver.NewVersion(v.String())
		if err != nil {
			continue
		}
		if f.c.Check(sv) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f SemverFilter) Derive(DeriveContext) VersionFilter { return f }

// String returns the constraint expression.
func (f SemverFilter) String() string { return f.expr }

// ChainedVersionFilter applies filters in order.
type ChainedVersionFilter struct {
	first, second VersionFilter
}

// NewChainedVersionFilter combines filters. Nil filters are skipped; a
// single filter is returned unwrapped.
func NewChainedVersionFilter(filters ...VersionFilter) VersionFilter {
	var out VersionFilter
	for _, f := range filters {
		switch {
		case f == nil:
		case out == nil:
			out = f
		default:
			out = ChainedVersionFilter{first: out, second: f}
		}
	}
	return out
}

func (f ChainedVersionFilter) Filter(dep artifact.Dependency, versions []version.Version) ([]version.Version, error) {
	versions, err := f.first.Filter(dep, versions)
	if err != nil || len(versions) == 0 {
		return versions, err
	}
	return f.second.Filter(dep, versions)
}

func (f ChainedVersionFilter) Derive(ctx DeriveContext) VersionFilter {
	a, b := f.first.Derive(ctx), f.second.Derive(ctx)
	if samePolicy(a, f.first) && samePolicy(b, f.second) {
		return f
	}
	return ChainedVersionFilter{first: a, second: b}
}
