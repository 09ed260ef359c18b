package observability

import (
	"context"
	"testing"
	"time"
)

type cacheOnly struct {
	NoopCacheHooks
	hits int
}

func (c *cacheOnly) OnCacheHit(context.Context, string) { c.hits++ }

type everything struct {
	NoopCollectHooks
	NoopCacheHooks
	NoopHTTPHooks
}

func TestInstall(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	c := &cacheOnly{}
	if !Install(c) {
		t.Fatal("Install(cacheOnly) = false")
	}
	Cache().OnCacheHit(ctx, "http")
	if c.hits != 1 {
		t.Errorf("hits = %d, want 1", c.hits)
	}
	if _, ok := Collect().(NoopCollectHooks); !ok {
		t.Error("cache hooks replaced the collect hooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("cache hooks replaced the HTTP hooks")
	}

	all := &everything{}
	Install(all)
	if Collect() != CollectHooks(all) || HTTP() != HTTPHooks(all) || Cache() != CacheHooks(all) {
		t.Error("Install did not register every implemented interface")
	}

	if Install("not hooks") {
		t.Error("Install(string) = true")
	}
	if HTTP() != HTTPHooks(all) {
		t.Error("a failed Install changed the hooks")
	}
}

func TestReset(t *testing.T) {
	Install(&everything{})
	Reset()
	if _, ok := Collect().(NoopCollectHooks); !ok {
		t.Error("Collect() not reset")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() not reset")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() not reset")
	}
}

func TestNoopHooks(t *testing.T) {
	ctx := context.Background()
	Collect().OnCollectComplete(ctx, "org.example:app:jar:1.0", 42, time.Second, nil)
	Cache().OnCacheSet(ctx, "libraries", 1024)
	HTTP().OnRetry(ctx, "repo1.maven.org", 2)
}
