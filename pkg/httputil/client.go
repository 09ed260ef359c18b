package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/teletha/bee-sub002/pkg/cache"
	beeerrors "github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/observability"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// DefaultTTL is how long fetched repository files stay cached.
const DefaultTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when the server answers 404.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")
)

// ClientOptions configures a Client.
type ClientOptions struct {
	Cache   cache.Cache       // Response cache (default: NullCache)
	Keyer   cache.Keyer       // Cache key builder (default: DefaultKeyer)
	TTL     time.Duration     // Lifetime of cached bodies (default: 24h)
	Timeout time.Duration     // Per-request timeout (default: 10s)
	Headers map[string]string // Sent with every request
	Retries int               // Attempts per request (default: 3)
	Delay   time.Duration     // Initial retry delay (default: 1s)

	// HTTP overrides the underlying client; Timeout is ignored when set.
	HTTP *http.Client
}

// WithDefaults returns a copy of ClientOptions with zero values replaced by defaults.
func (o ClientOptions) WithDefaults() ClientOptions {
	opts := o
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = time.Second
	}
	if opts.HTTP == nil {
		opts.HTTP = &http.Client{Timeout: opts.Timeout}
	}
	return opts
}

// Client fetches repository files with caching and retries.
// It is safe for concurrent use.
type Client struct {
	http  *http.Client
	opts  ClientOptions
	cache cache.Cache
	keyer cache.Keyer
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) *Client {
	opts = opts.WithDefaults()
	return &Client{http: opts.HTTP, opts: opts, cache: opts.Cache, keyer: opts.Keyer}
}

// Cached returns the cached body for key or calls fetch, retrying transient
// failures, and caches its result. If refresh is true the cache is not read.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, fetch func() ([]byte, error)) ([]byte, error) {
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			return data, nil
		}
	}
	var data []byte
	err := Retry(ctx, c.opts.Retries, c.opts.Delay, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	_ = c.cache.Set(ctx, key, data, c.opts.TTL)
	return data, nil
}

// Fetch returns the body at rawURL. Bodies are cached under the given
// namespace (usually the repository id) and the URL path.
func (c *Client) Fetch(ctx context.Context, namespace, rawURL string, refresh bool) ([]byte, error) {
	key := c.keyer.HTTPKey(namespace, rawURL)
	attempt := 0
	return c.Cached(ctx, key, refresh, func() ([]byte, error) {
		if attempt++; attempt > 1 {
			if u, err := url.Parse(rawURL); err == nil {
				observability.HTTP().OnRetry(ctx, u.Host, attempt)
			}
		}
		return c.get(ctx, rawURL)
	})
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}
	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("%w: read body: %v", ErrNetwork, err)}
	}
	return data, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusTooManyRequests:
		after := retryAfter(resp.Header.Get("Retry-After"))
		limited := &beeerrors.RateLimitedError{RetryAfter: int(after / time.Second)}
		return &RetryableError{
			Err:   fmt.Errorf("%w: %w", ErrNetwork, limited),
			After: after,
		}
	case code >= 500:
		return &RetryableError{Err: fmt.Errorf("%w: status %d", ErrNetwork, code)}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func hostPath(u *url.URL) (string, string) {
	return u.Host, u.Path
}
