package artifact

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Well-known artifact properties.
const (
	// PropLocalPath marks an artifact backed by a local file. Such artifacts
	// have no descriptor in any repository (system scope).
	PropLocalPath = "localPath"

	// PropIncludesDependencies marks a fat artifact that bundles its own
	// dependencies, so they are not traversed.
	PropIncludesDependencies = "includesDependencies"

	// PropType records the packaging type a dependency was declared with.
	PropType = "type"
)

// DefaultExtension is used when a coordinate omits the extension.
const DefaultExtension = "jar"

// Artifact identifies a versioned package.
//
// Identity is (GroupID, ArtifactID, Classifier, Extension); Version is
// replaced rather than mutated, e.g. when a range is resolved. Artifacts are
// immutable values: the With* methods return modified copies and Properties
// must not be written after construction.
type Artifact struct {
	GroupID    string
	ArtifactID string
	Classifier string
	Extension  string
	Version    string
	Properties map[string]string
}

// New creates an artifact with the default extension.
func New(groupID, artifactID, version string) Artifact {
	return Artifact{
		GroupID:    groupID,
		ArtifactID: artifactID,
		Extension:  DefaultExtension,
		Version:    version,
	}
}

// Parse parses "group:artifact[:extension[:classifier]]:version".
func Parse(coords string) (Artifact, error) {
	parts := strings.Split(strings.TrimSpace(coords), ":")
	var a Artifact
	switch len(parts) {
	case 3:
		a = New(parts[0], parts[1], parts[2])
	case 4:
		a = New(parts[0], parts[1], parts[3])
		a.Extension = parts[2]
	case 5:
		a = New(parts[0], parts[1], parts[4])
		a.Extension = parts[2]
		a.Classifier = parts[3]
	default:
		return Artifact{}, fmt.Errorf("invalid artifact coordinate %q (expected group:artifact[:extension[:classifier]]:version)", coords)
	}
	if a.GroupID == "" || a.ArtifactID == "" || a.Version == "" {
		return Artifact{}, fmt.Errorf("invalid artifact coordinate %q: empty segment", coords)
	}
	if a.Extension == "" {
		a.Extension = DefaultExtension
	}
	return a, nil
}

// MustParse is like Parse but panics on invalid input.
func MustParse(coords string) Artifact {
	a, err := Parse(coords)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Artifact) extension() string {
	if a.Extension == "" {
		return DefaultExtension
	}
	return a.Extension
}

// Key returns the version-less identity "group:artifact:classifier:extension".
// Two artifacts with the same key are versions of the same logical package.
func (a Artifact) Key() string {
	return a.GroupID + ":" + a.ArtifactID + ":" + a.Classifier + ":" + a.extension()
}

// Coordinate returns "group:artifact".
func (a Artifact) Coordinate() string {
	return a.GroupID + ":" + a.ArtifactID
}

// String formats a as a coordinate accepted by Parse.
func (a Artifact) String() string {
	var b strings.Builder
	b.WriteString(a.GroupID)
	b.WriteByte(':')
	b.WriteString(a.ArtifactID)
	b.WriteByte(':')
	b.WriteString(a.extension())
	if a.Classifier != "" {
		b.WriteByte(':')
		b.WriteString(a.Classifier)
	}
	b.WriteByte(':')
	b.WriteString(a.Version)
	return b.String()
}

// ID returns String plus the sorted properties. Artifacts with equal IDs
// are interchangeable.
func (a Artifact) ID() string {
	if len(a.Properties) == 0 {
		return a.String()
	}
	var b strings.Builder
	b.WriteString(a.String())
	for _, k := range slices.Sorted(maps.Keys(a.Properties)) {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(a.Properties[k])
	}
	return b.String()
}

// SameIdentity reports whether a and o differ at most in version.
func (a Artifact) SameIdentity(o Artifact) bool { return a.Key() == o.Key() }

// Equal reports whether a and o have the same identity and version.
func (a Artifact) Equal(o Artifact) bool {
	return a.SameIdentity(o) && a.Version == o.Version
}

// WithVersion returns a copy of a with the given version.
func (a Artifact) WithVersion(v string) Artifact {
	a.Version = v
	return a
}

// WithProperties returns a copy of a with props merged over its properties.
func (a Artifact) WithProperties(props map[string]string) Artifact {
	merged := maps.Clone(a.Properties)
	if merged == nil {
		merged = make(map[string]string, len(props))
	}
	maps.Copy(merged, props)
	a.Properties = merged
	return a
}

// Property returns the named property or "".
func (a Artifact) Property(key string) string { return a.Properties[key] }

// LocalPath returns the local file backing a, if any.
func (a Artifact) LocalPath() string { return a.Properties[PropLocalPath] }

// IsSnapshot reports whether a is a snapshot version.
func (a Artifact) IsSnapshot() bool {
	return strings.HasSuffix(strings.ToUpper(a.Version), "SNAPSHOT")
}

// Path returns the repository layout path of the file for a, e.g.
// "org/ow2/asm/asm/5.0/asm-5.0.jar".
func (a Artifact) Path() string {
	name := a.ArtifactID + "-" + a.Version
	if a.Classifier != "" {
		name += "-" + a.Classifier
	}
	return a.Dir() + "/" + name + "." + a.extension()
}

// Dir returns the repository directory holding all files of this version.
func (a Artifact) Dir() string {
	return strings.ReplaceAll(a.GroupID, ".", "/") + "/" + a.ArtifactID + "/" + a.Version
}
