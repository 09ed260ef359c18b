// Package errors provides coded errors shared by every bee package.
//
// A code tells the CLI what kind of failure happened without parsing
// messages: a bad coordinate on the command line, a POM missing from every
// repository or a repository that stopped answering. Codes group as
//
//	INVALID_*                            bad input (coordinates, project files, flags)
//	NOT_FOUND, ARTIFACT_NOT_FOUND        missing files and artifacts
//	NETWORK_ERROR, TIMEOUT, RATE_LIMITED repository access
//	RESOLUTION_FAILED                    collection failed for another reason
//	INTERNAL_ERROR                       rendering or other local failures
//
// Create and test them like this:
//
//	err := errors.New(errors.ErrCodeInvalidCoordinate, "invalid coordinate %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidCoordinate) { ... }
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidCoordinate Code = "INVALID_COORDINATE"
	ErrCodeInvalidProject    Code = "INVALID_PROJECT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeArtifactNotFound Code = "ARTIFACT_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeResolution Code = "RESOLUTION_FAILED"
	ErrCodeInternal   Code = "INTERNAL_ERROR"
)

var hints = map[Code]string{
	ErrCodeInvalidCoordinate: "coordinates look like group:artifact[:extension[:classifier]]:version",
	ErrCodeInvalidProject:    "check bee.toml or bee.yaml in the project directory",
	ErrCodeArtifactNotFound:  "check the coordinate and the repositories searched (--repo)",
	ErrCodeNetwork:           "check the repository URL and your connection",
	ErrCodeTimeout:           "raise --timeout or lower the load with --threads",
	ErrCodeRateLimited:       "the repository throttles requests; retry later or use a mirror",
}

// Hint returns a short suggestion for fixing errors with this code, or "".
func (c Code) Hint() string { return hints[c] }

// IsInput reports whether the code describes bad user input.
func (c Code) IsInput() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidCoordinate, ErrCodeInvalidProject,
		ErrCodeInvalidPath, ErrCodeInvalidFormat:
		return true
	}
	return false
}

// Error is an error with a code and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code and
// cause, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is returned by repositories answering 429.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 when the server gave none
	Message    string
}

func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %ds)", e.RetryAfter)
	}
	return msg
}

// Code returns ErrCodeRateLimited.
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
