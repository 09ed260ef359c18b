// Package httputil fetches files from Maven repositories over HTTP.
//
// # Client
//
// [Client] performs GET requests with a fixed timeout, default headers,
// response caching through a [cache.Cache] and automatic retries. Status
// codes map to sentinel errors:
//
//   - 200: success
//   - 404: [ErrNotFound]
//   - 429: retryable [ErrNetwork] carrying an [errors.RateLimitedError],
//     honoring Retry-After
//   - 5xx: retryable [ErrNetwork]
//   - anything else: [ErrNetwork]
//
// Only successful bodies are cached. Cache failures never fail a request.
//
// # Retry
//
// [Retry] re-runs an operation whose error is wrapped in [RetryableError],
// doubling the delay after each attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// The [Client] defaults to 3 attempts with a 1 second initial delay.
//
// [errors.RateLimitedError]: https://pkg.go.dev/github.com/teletha/bee-sub002/pkg/errors#RateLimitedError
package httputil
