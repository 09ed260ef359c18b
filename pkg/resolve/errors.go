package resolve

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/httputil"
)

// Classify wraps a collection error in a coded error for the CLI. The
// original error stays reachable through errors.As, so a
// *collect.CollectionError and its partial result can still be recovered.
// Context cancellation and nil are returned unchanged.
func Classify(err error) error {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return err
	}
	if errors.GetCode(err) != "" {
		return err
	}

	code := errors.ErrCodeResolution
	var (
		descErr *collect.DescriptorError
		limited *errors.RateLimitedError
	)
	switch {
	case stderrors.Is(err, collect.ErrTimeout), stderrors.Is(err, context.DeadlineExceeded):
		code = errors.ErrCodeTimeout
	case stderrors.As(err, &descErr) && stderrors.Is(descErr, httputil.ErrNotFound):
		code = errors.ErrCodeArtifactNotFound
	case stderrors.As(err, &limited):
		code = errors.ErrCodeRateLimited
	case stderrors.Is(err, httputil.ErrNetwork):
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, "%s", summary(code, err))
}

var headlines = map[errors.Code]string{
	errors.ErrCodeTimeout:          "collection timed out",
	errors.ErrCodeArtifactNotFound: "artifact not found",
	errors.ErrCodeRateLimited:      "repository rate limited",
	errors.ErrCodeNetwork:          "repository unreachable",
	errors.ErrCodeResolution:       "dependency collection failed",
}

// summary is a one-line headline for the CLI: the failure kind, the first
// failing artifact and how many failures followed. The details stay in
// the wrapped cause.
func summary(code errors.Code, err error) string {
	msg := headlines[code]
	var ce *collect.CollectionError
	if !stderrors.As(err, &ce) || len(ce.Errs) == 0 {
		return msg
	}
	if code != errors.ErrCodeTimeout {
		if a, ok := failedArtifact(ce.Errs[0]); ok {
			msg += ": " + a.String()
		}
	}
	if n := len(ce.Errs) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

func failedArtifact(err error) (artifact.Artifact, bool) {
	var (
		descErr  *collect.DescriptorError
		rangeErr *collect.VersionRangeError
	)
	switch {
	case stderrors.As(err, &descErr):
		return descErr.Artifact, true
	case stderrors.As(err, &rangeErr):
		return rangeErr.Artifact, true
	}
	return artifact.Artifact{}, false
}
