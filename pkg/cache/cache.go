// Package cache stores repository responses and resolved library sets.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: JSON entries under a local directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, for teams and CI runners
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are built by a [Keyer] so that backends never see raw coordinates.
// Every backend reports hits, misses and writes through
// [observability.Cache], labelled with the key's type prefix.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Cache is a byte-oriented store with per-entry expiry.
//
// Get reports a miss with ok false and a nil error. A zero ttl in Set keeps
// the entry until it is deleted. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a repository response, e.g. a POM or maven-metadata.xml.
	HTTPKey(namespace, key string) string

	// LibrariesKey keys a flattened library set.
	LibrariesKey(opts LibrariesKeyOpts) string
}

// LibrariesKeyOpts lists every input that changes a library set.
type LibrariesKeyOpts struct {
	Root         string   `json:"root,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Managed      []string `json:"managed,omitempty"`
	Exclusions   []string `json:"exclusions,omitempty"`
	Repositories []string `json:"repositories,omitempty"`
	Scope        string   `json:"scope"`
}

// DefaultKeyer produces plain keys of the form "type:namespace:key".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LibrariesKey returns "libraries:<sha256 of opts>".
func (DefaultKeyer) LibrariesKey(opts LibrariesKeyOpts) string {
	data, _ := json.Marshal(opts)
	return "libraries:" + Hash(data)
}

// keyType returns the type prefix of a key for hook labels.
func keyType(key string) string {
	for _, p := range []string{"http", "libraries"} {
		if strings.HasPrefix(key, p+":") || strings.Contains(key, ":"+p+":") {
			return p
		}
	}
	return "other"
}
