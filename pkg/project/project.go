// Package project loads bee project files.
//
// A project is described by bee.toml or bee.yaml in the project directory:
//
//	exclusions = ["commons-logging:*"]
//
//	[project]
//	group = "org.example"
//	name = "app"
//	version = "1.0"
//
//	[[repositories]]
//	id = "jitpack"
//	url = "https://jitpack.io"
//
//	[[dependencies]]
//	coordinate = "com.google.guava:guava:32.1.3-jre"
//
//	[[dependencies]]
//	coordinate = "junit:junit:4.13.2"
//	scope = "test"
//
// The YAML form uses the same keys. Maven Central is searched after the
// declared repositories unless central = false.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/errors"
)

// FileNames lists the project file names Find looks for, in order.
var FileNames = []string{"bee.toml", "bee.yaml", "bee.yml"}

// Project is a validated project definition.
type Project struct {
	Artifact     artifact.Artifact
	Repositories []artifact.Repository
	Dependencies []artifact.Dependency
	Managed      []artifact.Dependency
	Exclusions   []artifact.Exclusion
	Path         string
}

type file struct {
	Project struct {
		Group   string `toml:"group" yaml:"group"`
		Name    string `toml:"name" yaml:"name"`
		Version string `toml:"version" yaml:"version"`
	} `toml:"project" yaml:"project"`
	Central      *bool            `toml:"central" yaml:"central"`
	Exclusions   []string         `toml:"exclusions" yaml:"exclusions"`
	Repositories []repositorySpec `toml:"repositories" yaml:"repositories"`
	Dependencies []dependencySpec `toml:"dependencies" yaml:"dependencies"`
	Managed      []dependencySpec `toml:"managed" yaml:"managed"`
}

type repositorySpec struct {
	ID  string `toml:"id" yaml:"id"`
	URL string `toml:"url" yaml:"url"`
}

type dependencySpec struct {
	Coordinate string   `toml:"coordinate" yaml:"coordinate"`
	Scope      string   `toml:"scope" yaml:"scope"`
	Optional   bool     `toml:"optional" yaml:"optional"`
	Exclusions []string `toml:"exclusions" yaml:"exclusions"`
	LocalPath  string   `toml:"path" yaml:"path"`
}

// Find returns the project file in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "no project file (%s) in %s", strings.Join(FileNames, ", "), dir)
}

// Load reads and validates a project file. The format follows the file
// extension.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read project file")
	}
	p, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	p.Path = path
	return p, nil
}

// Parse decodes a project definition. format is "toml", "yaml" or "yml",
// with or without a leading dot.
func Parse(data []byte, format string) (*Project, error) {
	var f file
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse toml project")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse yaml project")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported project format %q", format)
	}
	return f.build()
}

func (f *file) build() (*Project, error) {
	pf := f.Project
	if err := errors.ValidateCoordinatePart("project group", pf.Group); err != nil {
		return nil, invalid(err)
	}
	if err := errors.ValidateCoordinatePart("project name", pf.Name); err != nil {
		return nil, invalid(err)
	}
	if pf.Version == "" {
		pf.Version = "1.0-SNAPSHOT"
	}
	if err := errors.ValidateVersion(pf.Version); err != nil {
		return nil, invalid(err)
	}
	p := &Project{Artifact: artifact.New(pf.Group, pf.Name, pf.Version)}

	for i, r := range f.Repositories {
		if err := errors.ValidateRepositoryURL(r.URL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "repository %d", i+1)
		}
		id := r.ID
		if id == "" {
			id = r.URL
		}
		p.Repositories = append(p.Repositories, artifact.Repository{ID: id, URL: r.URL})
	}
	if f.Central == nil || *f.Central {
		p.Repositories = append(p.Repositories, artifact.Central)
	}

	for _, s := range f.Exclusions {
		e, err := artifact.ParseExclusion(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "project exclusion")
		}
		p.Exclusions = append(p.Exclusions, e)
	}

	var err error
	if p.Dependencies, err = dependencies(f.Dependencies); err != nil {
		return nil, err
	}
	if p.Managed, err = dependencies(f.Managed); err != nil {
		return nil, err
	}
	return p, nil
}

func dependencies(specs []dependencySpec) ([]artifact.Dependency, error) {
	var out []artifact.Dependency
	for _, s := range specs {
		d, err := s.dependency()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidProject, err, "dependency %q", s.Coordinate)
		}
		out = append(out, d)
	}
	return out, nil
}

func (s dependencySpec) dependency() (artifact.Dependency, error) {
	a, err := ParseCoordinate(s.Coordinate)
	if err != nil {
		return artifact.Dependency{}, err
	}
	scope, err := artifact.ParseScope(s.Scope)
	if err != nil {
		return artifact.Dependency{}, err
	}
	if s.LocalPath != "" {
		a = a.WithProperties(map[string]string{artifact.PropLocalPath: s.LocalPath})
	}
	d := artifact.NewDependency(a, scope).WithOptional(s.Optional)
	if len(s.Exclusions) > 0 {
		ex := make([]artifact.Exclusion, 0, len(s.Exclusions))
		for _, raw := range s.Exclusions {
			e, err := artifact.ParseExclusion(raw)
			if err != nil {
				return artifact.Dependency{}, err
			}
			ex = append(ex, e)
		}
		d = d.WithExclusions(ex)
	}
	return d, nil
}

// ParseCoordinate parses and validates an artifact coordinate given on the
// command line or in a project file.
func ParseCoordinate(s string) (artifact.Artifact, error) {
	a, err := artifact.Parse(s)
	if err != nil {
		return artifact.Artifact{}, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "invalid coordinate")
	}
	if err := errors.ValidateCoordinatePart("groupId", a.GroupID); err != nil {
		return artifact.Artifact{}, err
	}
	if err := errors.ValidateCoordinatePart("artifactId", a.ArtifactID); err != nil {
		return artifact.Artifact{}, err
	}
	if a.Classifier != "" {
		if err := errors.ValidateCoordinatePart("classifier", a.Classifier); err != nil {
			return artifact.Artifact{}, err
		}
	}
	if err := errors.ValidateVersion(a.Version); err != nil {
		return artifact.Artifact{}, err
	}
	return a, nil
}

func invalid(err error) error {
	return errors.Wrap(errors.ErrCodeInvalidProject, err, "invalid project")
}

// Request returns the collect request for the project's dependencies. The
// project itself labels the root; its dependencies are collected as a bare
// list so that direct test and provided dependencies are kept.
func (p *Project) Request() *collect.Request {
	root := p.Artifact
	return &collect.Request{
		RootArtifact: &root,
		Dependencies: p.Dependencies,
		Managed:      p.Managed,
		Repositories: p.Repositories,
		Context:      "project",
	}
}
