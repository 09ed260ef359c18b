package prom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/teletha/bee-sub002/pkg/observability"
)

func TestHooks(t *testing.T) {
	ctx := context.Background()
	h := New(prometheus.NewRegistry())

	h.OnCollectComplete(ctx, "g:a:1", 12, time.Second, nil)
	h.OnCollectComplete(ctx, "g:a:1", 3, time.Second, errors.New("boom"))
	h.OnDescriptorRead(ctx, "g:b:1", time.Millisecond, nil)
	h.OnCacheHit(ctx, "http")
	h.OnCacheHit(ctx, "http")
	h.OnCacheMiss(ctx, "libraries")
	h.OnCacheSet(ctx, "http", 128)
	h.OnResponse(ctx, "GET", "repo1.maven.org", "/x.pom", 404, time.Millisecond)
	h.OnError(ctx, "GET", "repo1.maven.org", "/y.pom", errors.New("reset"))
	h.OnRetry(ctx, "repo1.maven.org", 2)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"ok collections", h.collections.WithLabelValues("ok"), 1},
		{"failed collections", h.collections.WithLabelValues("error"), 1},
		{"last node count", h.nodes, 3},
		{"descriptor reads", h.descriptors.WithLabelValues("ok"), 1},
		{"cache hits", h.cache.WithLabelValues("http", "hit"), 2},
		{"cache misses", h.cache.WithLabelValues("libraries", "miss"), 1},
		{"cache bytes", h.cacheBytes, 128},
		{"responses", h.requests.WithLabelValues("repo1.maven.org", "404"), 1},
		{"http errors", h.httpErrors.WithLabelValues("repo1.maven.org"), 1},
		{"retries", h.retries.WithLabelValues("repo1.maven.org"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstall(t *testing.T) {
	defer observability.Reset()
	h := New(prometheus.NewRegistry())
	h.Install()

	observability.Cache().OnCacheMiss(context.Background(), "http")
	if got := testutil.ToFloat64(h.cache.WithLabelValues("http", "miss")); got != 1 {
		t.Errorf("installed hook recorded %v misses, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	h := New(prometheus.NewRegistry())
	h.OnCollectComplete(context.Background(), "root", 5, time.Second, nil)

	path := filepath.Join(t.TempDir(), "bee.prom")
	if err := h.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `bee_collections_total{result="ok"} 1`) {
		t.Errorf("textfile missing collection counter:\n%s", data)
	}
}
