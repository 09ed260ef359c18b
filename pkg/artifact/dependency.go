package artifact

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Exclusion prunes matching artifacts from a dependency's subtree.
//
// Each field is a glob ("*", "org.apache.*"). An empty Classifier or
// Extension matches anything.
type Exclusion struct {
	GroupID    string
	ArtifactID string
	Classifier string
	Extension  string
}

// ParseExclusion parses "group:artifact[:classifier[:extension]]".
func ParseExclusion(s string) (Exclusion, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
		return Exclusion{}, fmt.Errorf("invalid exclusion %q (expected group:artifact[:classifier[:extension]])", s)
	}
	e := Exclusion{GroupID: parts[0], ArtifactID: parts[1]}
	if len(parts) > 2 {
		e.Classifier = parts[2]
	}
	if len(parts) > 3 {
		e.Extension = parts[3]
	}
	for _, p := range []string{e.GroupID, e.ArtifactID, e.Classifier, e.Extension} {
		if !doublestar.ValidatePattern(p) {
			return Exclusion{}, fmt.Errorf("invalid exclusion %q: bad pattern %q", s, p)
		}
	}
	return e, nil
}

// Matches reports whether a is excluded by e.
func (e Exclusion) Matches(a Artifact) bool {
	return matchField(e.GroupID, a.GroupID) &&
		matchField(e.ArtifactID, a.ArtifactID) &&
		matchField(e.Classifier, a.Classifier) &&
		matchField(e.Extension, a.extension())
}

func matchField(pattern, value string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	ok, err := doublestar.Match(pattern, value)
	return err == nil && ok
}

// String formats e as "group:artifact:classifier:extension".
func (e Exclusion) String() string {
	return e.GroupID + ":" + e.ArtifactID + ":" + e.Classifier + ":" + e.Extension
}

// Dependency is an edge to an artifact with scope, optionality and
// exclusions. Like Artifact it is an immutable value.
type Dependency struct {
	Artifact   Artifact
	Scope      Scope
	Optional   bool
	Exclusions []Exclusion
}

// NewDependency creates a dependency on a.
func NewDependency(a Artifact, scope Scope) Dependency {
	return Dependency{Artifact: a, Scope: scope.Normalize()}
}

// Key returns the identity key of the dependency's artifact.
func (d Dependency) Key() string { return d.Artifact.Key() }

// WithArtifact returns a copy of d pointing at a.
func (d Dependency) WithArtifact(a Artifact) Dependency {
	d.Artifact = a
	return d
}

// WithScope returns a copy of d with the given scope.
func (d Dependency) WithScope(s Scope) Dependency {
	d.Scope = s
	return d
}

// WithOptional returns a copy of d with the given optional flag.
func (d Dependency) WithOptional(optional bool) Dependency {
	d.Optional = optional
	return d
}

// WithExclusions returns a copy of d with the given exclusions.
func (d Dependency) WithExclusions(ex []Exclusion) Dependency {
	d.Exclusions = ex
	return d
}

// Excludes reports whether any of d's exclusions matches a.
func (d Dependency) Excludes(a Artifact) bool {
	for _, e := range d.Exclusions {
		if e.Matches(a) {
			return true
		}
	}
	return false
}

// ID returns a string that is equal for structurally equal dependencies.
func (d Dependency) ID() string {
	var b strings.Builder
	b.WriteString(d.Artifact.ID())
	b.WriteString(" (")
	b.WriteString(d.Scope.String())
	if d.Optional {
		b.WriteString("?")
	}
	b.WriteByte(')')
	if len(d.Exclusions) > 0 {
		ex := make([]string, len(d.Exclusions))
		for i, e := range d.Exclusions {
			ex[i] = e.String()
		}
		slices.Sort(ex)
		b.WriteString(" !")
		b.WriteString(strings.Join(ex, ","))
	}
	return b.String()
}

// String formats d as "artifact (scope)".
func (d Dependency) String() string {
	s := d.Artifact.String() + " (" + d.Scope.String()
	if d.Optional {
		s += ", optional"
	}
	return s + ")"
}
