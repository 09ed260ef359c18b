package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// coordinatePartRegex matches Maven groupId, artifactId and classifier
// segments.
var coordinatePartRegex = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.\-]*$`)

// ValidateCoordinatePart validates one segment of an artifact coordinate.
// kind names the segment in the error message ("groupId", "artifactId").
//
// Segments end up in repository paths and cache file names, so anything
// that could escape a directory is rejected.
func ValidateCoordinatePart(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "%s cannot be empty", kind)
	}
	if len(value) > 256 {
		return New(ErrCodeInvalidCoordinate, "%s too long (max 256 characters)", kind)
	}
	if strings.Contains(value, "..") {
		return New(ErrCodeInvalidCoordinate, "%s contains invalid characters: %q", kind, "..")
	}
	if !coordinatePartRegex.MatchString(value) {
		return New(ErrCodeInvalidCoordinate, "invalid %s: %q", kind, value)
	}
	return nil
}

// ValidateVersion validates a version or version constraint string.
func ValidateVersion(value string) error {
	if value == "" {
		return New(ErrCodeInvalidCoordinate, "version cannot be empty")
	}
	for _, r := range value {
		if unicode.IsControl(r) || unicode.IsSpace(r) || r == '/' || r == '\\' {
			return New(ErrCodeInvalidCoordinate, "version contains invalid characters: %q", value)
		}
	}
	return nil
}

// ValidatePath checks a file path relative to a repository root, such as
// "org/example/lib/1.0/lib-1.0.pom". Paths are built from descriptor
// contents, so a segment that is empty, "." or ".." is rejected, as are
// absolute paths, backslashes and control characters.
func ValidatePath(path string) error {
	const maxPathLength = 500
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path must be relative: %q", path)
	case strings.ContainsRune(path, '\\'):
		return New(ErrCodeInvalidPath, "path cannot contain backslashes: %q", path)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains control characters")
	}
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".", "..":
			return New(ErrCodeInvalidPath, "path has an invalid segment %q: %q", seg, path)
		}
	}
	return nil
}

// ValidateRepositoryURL validates a repository URL. Repositories are
// reachable over http, https or file.
func ValidateRepositoryURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "repository URL cannot be empty")
	}
	for _, scheme := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "repository URL must use http, https or file scheme: %q", rawURL)
}
