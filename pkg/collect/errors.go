package collect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teletha/bee-sub002/pkg/artifact"
)

// ErrTimeout is reported when the collection does not reach quiescence
// within Options.Timeout. It is always fatal.
var ErrTimeout = errors.New("dependency collection timed out")

// VersionRangeError reports a malformed constraint, a failed metadata
// lookup or a range without acceptable versions.
type VersionRangeError struct {
	Artifact   artifact.Artifact
	Constraint string
	Err        error
}

func (e *VersionRangeError) Error() string {
	return fmt.Sprintf("failed to resolve version range %q for %s: %v", e.Constraint, e.Artifact.Coordinate(), e.Err)
}

func (e *VersionRangeError) Unwrap() error { return e.Err }

// ErrNoVersions is wrapped by a VersionRangeError when no candidate version
// is left after range resolution and filtering.
var ErrNoVersions = errors.New("no acceptable versions available")

// DescriptorError reports that an artifact's descriptor could not be read.
type DescriptorError struct {
	Artifact artifact.Artifact
	Err      error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("failed to read artifact descriptor for %s: %v", e.Artifact, e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// CollectionError is returned when a collection recorded any error. Result
// holds whatever was collected.
type CollectionError struct {
	Result *Result
	Errs   []error
}

func (e *CollectionError) Error() string {
	root := "dependencies"
	if e.Result != nil && e.Result.Root != nil {
		root = e.Result.Root.String()
	}
	switch len(e.Errs) {
	case 0:
		return "failed to collect " + root
	case 1:
		return fmt.Sprintf("failed to collect %s: %v", root, e.Errs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "failed to collect %s: %d errors:", root, len(e.Errs))
	for _, err := range e.Errs {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *CollectionError) Unwrap() []error { return e.Errs }
