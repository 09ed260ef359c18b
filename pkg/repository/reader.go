package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

const (
	maxParents = 16 // Longest parent chain followed
	maxImports = 16 // Deepest BOM import nesting
)

// DescriptorReader reads POM files into artifact descriptors.
// It is safe for concurrent use.
type DescriptorReader struct {
	fetcher Fetcher
	logger  *log.Logger

	poms sync.Map // coordinate@repos -> *pomProject
}

// NewDescriptorReader creates a reader fetching POMs through f.
func NewDescriptorReader(f Fetcher, logger *log.Logger) *DescriptorReader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DescriptorReader{fetcher: f, logger: logger}
}

// ReadDescriptor reads the effective POM of req.Artifact. Relocations are
// followed until a POM without one is reached; the result's Artifact is
// that final coordinate and Relocations lists the ones passed through.
func (r *DescriptorReader) ReadDescriptor(ctx context.Context, req collect.DescriptorRequest) (*collect.DescriptorResult, error) {
	a := req.Artifact
	seen := make(map[string]bool)
	var relocations []artifact.Artifact

	for {
		id := a.Coordinate() + ":" + a.Version
		if seen[id] {
			return nil, &collect.DescriptorError{Artifact: req.Artifact, Err: fmt.Errorf("relocation cycle at %s", id)}
		}
		seen[id] = true

		m, err := r.effective(ctx, a.GroupID, a.ArtifactID, a.Version, req.Repositories, nil)
		if err != nil {
			return nil, err
		}
		if target, ok := m.relocate(a); ok {
			r.logger.Debug("following relocation", "from", a, "to", target, "message", m.relocation.Message)
			relocations = append(relocations, a)
			a = target
			continue
		}
		return m.result(a, relocations, r.logger), nil
	}
}

// model is a POM with its parents merged in.
type model struct {
	groupID, artifactID, version, packaging string
	parentGroupID, parentVersion            string

	props      map[string]string
	deps       []pomDependency
	managed    []pomDependency
	repos      []pomRepository
	relocation *pomRelocation
}

// effective loads the POM, merges its parents, interpolates placeholders,
// applies its own dependency management and imports BOMs.
func (r *DescriptorReader) effective(ctx context.Context, g, a, v string, repos []artifact.Repository, importing map[string]bool) (*model, error) {
	m, err := r.inherit(ctx, g, a, v, repos, 0)
	if err != nil {
		return nil, err
	}
	m.interpolate()

	var managed []pomDependency
	have := make(map[string]bool)
	for _, d := range m.managed {
		if d.Scope != "import" {
			managed = append(managed, d)
			have[d.key()] = true
		}
	}
	for _, d := range m.managed {
		if d.Scope != "import" || d.Type != "pom" {
			continue
		}
		id := d.GroupID + ":" + d.ArtifactID + ":" + d.Version
		if importing == nil {
			importing = make(map[string]bool)
		}
		if importing[id] || len(importing) >= maxImports {
			return nil, fmt.Errorf("bom import cycle at %s", id)
		}
		importing[id] = true
		bom, err := r.effective(ctx, d.GroupID, d.ArtifactID, d.Version, repos, importing)
		delete(importing, id)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", id, err)
		}
		for _, bd := range bom.managed {
			if !have[bd.key()] {
				managed = append(managed, bd)
				have[bd.key()] = true
			}
		}
	}
	m.managed = managed
	m.applyManagement()
	return m, nil
}

// inherit loads the POM and merges its parent chain without interpolation.
func (r *DescriptorReader) inherit(ctx context.Context, g, a, v string, repos []artifact.Repository, depth int) (*model, error) {
	if depth > maxParents {
		return nil, fmt.Errorf("parent chain of %s:%s:%s is too long", g, a, v)
	}
	p, err := r.pom(ctx, g, a, v, repos)
	if err != nil {
		return nil, err
	}

	m := &model{
		groupID:    p.GroupID,
		artifactID: p.ArtifactID,
		version:    p.Version,
		packaging:  p.Packaging,
		props:      maps.Clone(map[string]string(p.Properties)),
		deps:       p.Dependencies,
		managed:    p.Management,
		repos:      slices.Clone(p.Repositories),
		relocation: p.Relocation,
	}
	if m.props == nil {
		m.props = make(map[string]string)
	}
	if m.packaging == "" {
		m.packaging = "jar"
	}
	if p.Parent == nil {
		return m, nil
	}

	m.parentGroupID, m.parentVersion = p.Parent.GroupID, p.Parent.Version
	if m.groupID == "" {
		m.groupID = p.Parent.GroupID
	}
	if m.version == "" {
		m.version = p.Parent.Version
	}
	parent, err := r.inherit(ctx, p.Parent.GroupID, p.Parent.ArtifactID, p.Parent.Version, repos, depth+1)
	if err != nil {
		return nil, fmt.Errorf("parent of %s:%s: %w", m.groupID, m.artifactID, err)
	}
	for k, v := range parent.props {
		if _, ok := m.props[k]; !ok {
			m.props[k] = v
		}
	}
	m.deps = mergePOMDeps(m.deps, parent.deps)
	m.managed = mergePOMDeps(m.managed, parent.managed)
	m.repos = append(m.repos, parent.repos...)
	return m, nil
}

func mergePOMDeps(child, parent []pomDependency) []pomDependency {
	if len(parent) == 0 {
		return child
	}
	have := make(map[string]bool, len(child))
	for _, d := range child {
		have[d.key()] = true
	}
	out := append([]pomDependency(nil), child...)
	for _, d := range parent {
		if !have[d.key()] {
			out = append(out, d)
		}
	}
	return out
}

// pom fetches and parses a POM from the first repository holding it.
func (r *DescriptorReader) pom(ctx context.Context, g, a, v string, repos []artifact.Repository) (*pomProject, error) {
	key := g + ":" + a + ":" + v + "@" + artifact.ReposKey(repos)
	if p, ok := r.poms.Load(key); ok {
		return p.(*pomProject), nil
	}

	path := pomPath(g, a, v)
	var errs []error
	for _, repo := range repos {
		data, err := r.fetcher.Fetch(ctx, repo, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s: %w", repo.ID, err))
			}
			continue
		}
		p, err := parsePOM(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", repo.ID, path, err)
		}
		actual, _ := r.poms.LoadOrStore(key, p)
		return actual.(*pomProject), nil
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, fmt.Errorf("%s:%s:%s: %w", g, a, v, ErrNotFound)
}

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

func (m *model) lookup(name string) (string, bool) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "project."), "pom.")
	switch name {
	case "groupId":
		return m.groupID, true
	case "artifactId":
		return m.artifactID, true
	case "version":
		return m.version, true
	case "packaging":
		return m.packaging, true
	case "parent.groupId":
		return m.parentGroupID, m.parentGroupID != ""
	case "parent.version":
		return m.parentVersion, m.parentVersion != ""
	}
	v, ok := m.props[name]
	return v, ok
}

// expand replaces known placeholders in s. Nested placeholders are
// expanded up to a fixed depth; unknown ones are left as written.
func (m *model) expand(s string) string {
	for range 8 {
		if !strings.Contains(s, "${") {
			return s
		}
		next := placeholder.ReplaceAllStringFunc(s, func(ph string) string {
			if v, ok := m.lookup(ph[2 : len(ph)-1]); ok {
				return v
			}
			return ph
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (m *model) interpolate() {
	m.version = m.expand(m.version)
	m.groupID = m.expand(m.groupID)
	for k, v := range m.props {
		m.props[k] = m.expand(v)
	}
	expandDeps := func(deps []pomDependency) []pomDependency {
		out := make([]pomDependency, len(deps))
		for i, d := range deps {
			d.GroupID = m.expand(d.GroupID)
			d.ArtifactID = m.expand(d.ArtifactID)
			d.Version = m.expand(d.Version)
			d.Type = m.expand(d.Type)
			d.Classifier = m.expand(d.Classifier)
			d.Scope = m.expand(d.Scope)
			d.Optional = m.expand(d.Optional)
			d.SystemPath = m.expand(d.SystemPath)
			out[i] = d
		}
		return out
	}
	m.deps = expandDeps(m.deps)
	m.managed = expandDeps(m.managed)
	for i, repo := range m.repos {
		m.repos[i].URL = m.expand(repo.URL)
	}
	if m.relocation != nil {
		rel := *m.relocation
		rel.GroupID, rel.ArtifactID, rel.Version = m.expand(rel.GroupID), m.expand(rel.ArtifactID), m.expand(rel.Version)
		m.relocation = &rel
	}
}

// applyManagement fills missing versions, scopes and exclusions of the
// POM's own dependencies from its dependencyManagement.
func (m *model) applyManagement() {
	if len(m.managed) == 0 {
		return
	}
	byKey := make(map[string]pomDependency, len(m.managed))
	for _, d := range m.managed {
		if _, ok := byKey[d.key()]; !ok {
			byKey[d.key()] = d
		}
	}
	for i, d := range m.deps {
		mg, ok := byKey[d.key()]
		if !ok {
			continue
		}
		if d.Version == "" {
			d.Version = mg.Version
		}
		if d.Scope == "" {
			d.Scope = mg.Scope
		}
		if d.Optional == "" {
			d.Optional = mg.Optional
		}
		if len(d.Exclusions) == 0 {
			d.Exclusions = mg.Exclusions
		}
		m.deps[i] = d
	}
}

// relocate returns the relocation target of a, if the POM declares one
// pointing somewhere else.
func (m *model) relocate(a artifact.Artifact) (artifact.Artifact, bool) {
	rel := m.relocation
	if rel == nil {
		return artifact.Artifact{}, false
	}
	target := a
	if rel.GroupID != "" {
		target.GroupID = rel.GroupID
	}
	if rel.ArtifactID != "" {
		target.ArtifactID = rel.ArtifactID
	}
	if rel.Version != "" {
		target.Version = rel.Version
	}
	if target.Equal(a) {
		return artifact.Artifact{}, false
	}
	return target, true
}

func (m *model) result(a artifact.Artifact, relocations []artifact.Artifact, logger *log.Logger) *collect.DescriptorResult {
	res := &collect.DescriptorResult{
		Artifact:    a,
		Relocations: relocations,
		Properties:  m.props,
	}
	for _, d := range m.deps {
		if dep, ok := toDependency(d, logger); ok {
			res.Dependencies = append(res.Dependencies, dep)
		}
	}
	for _, d := range m.managed {
		if dep, ok := toDependency(d, logger); ok {
			res.Managed = append(res.Managed, dep)
		}
	}
	for _, repo := range m.repos {
		if repo.URL == "" || strings.Contains(repo.URL, "${") {
			continue
		}
		id := repo.ID
		if id == "" {
			id = repo.URL
		}
		res.Repositories = append(res.Repositories, artifact.Repository{ID: id, URL: repo.URL})
	}
	return res
}

// toDependency converts a POM dependency. Entries with unresolved
// coordinates, no version or an unknown scope are skipped.
func toDependency(d pomDependency, logger *log.Logger) (artifact.Dependency, bool) {
	coords := d.GroupID + ":" + d.ArtifactID
	if d.GroupID == "" || d.ArtifactID == "" || strings.Contains(coords, "${") {
		logger.Debug("skipping dependency with unresolved coordinates", "dependency", coords)
		return artifact.Dependency{}, false
	}
	if d.Version == "" || strings.Contains(d.Version, "${") {
		logger.Debug("skipping dependency without version", "dependency", coords, "version", d.Version)
		return artifact.Dependency{}, false
	}
	scope, err := artifact.ParseScope(d.Scope)
	if err != nil {
		logger.Debug("skipping dependency", "dependency", coords, "err", err)
		return artifact.Dependency{}, false
	}

	ext, classifier := extension(d.Type)
	if d.Classifier != "" {
		classifier = d.Classifier
	}
	a := artifact.Artifact{
		GroupID:    d.GroupID,
		ArtifactID: d.ArtifactID,
		Classifier: classifier,
		Extension:  ext,
		Version:    d.Version,
	}
	props := make(map[string]string)
	if d.Type != "" && d.Type != "jar" {
		props[artifact.PropType] = d.Type
	}
	if scope == artifact.System && d.SystemPath != "" {
		props[artifact.PropLocalPath] = d.SystemPath
	}
	if len(props) > 0 {
		a = a.WithProperties(props)
	}

	dep := artifact.NewDependency(a, scope).WithOptional(strings.EqualFold(strings.TrimSpace(d.Optional), "true"))
	if len(d.Exclusions) > 0 {
		ex := make([]artifact.Exclusion, len(d.Exclusions))
		for i, e := range d.Exclusions {
			ex[i] = artifact.Exclusion{GroupID: e.GroupID, ArtifactID: e.ArtifactID}
		}
		dep = dep.WithExclusions(ex)
	}
	return dep, true
}
