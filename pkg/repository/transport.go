package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/teletha/bee-sub002/pkg/artifact"
	beeerrors "github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/httputil"
)

// ErrNotFound is returned when a repository does not hold a file.
var ErrNotFound = httputil.ErrNotFound

// Fetcher reads a file from a repository. path is relative to the
// repository root. A missing file is reported as ErrNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, repo artifact.Repository, path string) ([]byte, error)
}

// Transport fetches from http(s) repositories through an httputil.Client
// and from file:// repositories directly.
type Transport struct {
	client  *httputil.Client
	refresh bool
}

// NewTransport creates a transport. A nil client means an uncached default
// client. If refresh is true cached responses are ignored and replaced.
func NewTransport(client *httputil.Client, refresh bool) *Transport {
	if client == nil {
		client = httputil.NewClient(httputil.ClientOptions{})
	}
	return &Transport{client: client, refresh: refresh}
}

// Fetch reads path from repo. Paths are built from descriptor contents and
// are rejected when they could leave the repository root.
func (t *Transport) Fetch(ctx context.Context, repo artifact.Repository, path string) ([]byte, error) {
	if err := beeerrors.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("repository %s: %w", repo.ID, err)
	}
	u, err := url.Parse(repo.URL)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", repo.ID, err)
	}
	switch u.Scheme {
	case "http", "https":
		return t.client.Fetch(ctx, repo.ID, repo.BaseURL()+"/"+path, t.refresh)
	case "file":
		data, err := os.ReadFile(filepath.Join(filepath.FromSlash(u.Path), filepath.FromSlash(path)))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return data, err
	default:
		return nil, fmt.Errorf("repository %s: unsupported scheme %q", repo.ID, u.Scheme)
	}
}
