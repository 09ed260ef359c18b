package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, _ := c.Get(ctx, "http:central::a"); hit {
		t.Fatal("empty cache should miss")
	}
	if err := c.Set(ctx, "http:central::a", []byte("<pom/>"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "http:central::a")
	if err != nil || !hit || string(data) != "<pom/>" {
		t.Errorf("Get = %q, %v, %v; want hit", data, hit, err)
	}

	if err := c.Delete(ctx, "http:central::a"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "http:central::a"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "http:central::a"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should never expire")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	path := c.path("k")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), time.Hour)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("Clear left %d entries", len(entries))
	}
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, "redis://"+s.Addr(), "bee:")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if !s.Exists("bee:k") {
		t.Error("key should be stored under the prefix")
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v; want hit", data, hit, err)
	}

	s.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should expire with its ttl")
	}

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)
	s.Set("other", "x")
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Exists("bee:a") || s.Exists("bee:b") {
		t.Error("Clear should delete prefixed keys")
	}
	if !s.Exists("other") {
		t.Error("Clear should keep keys outside the prefix")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "://nope", ""); err == nil {
		t.Error("invalid url should fail")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.HTTPKey("central", "junit/junit/4.13/junit-4.13.pom"); got != "http:central:junit/junit/4.13/junit-4.13.pom" {
		t.Errorf("HTTPKey = %s", got)
	}

	base := LibrariesKeyOpts{Root: "g:a:jar:1", Scope: "compile"}
	other := base
	other.Scope = "test"
	if k.LibrariesKey(base) == k.LibrariesKey(other) {
		t.Error("different scopes should produce different keys")
	}
	if k.LibrariesKey(base) != k.LibrariesKey(base) {
		t.Error("LibrariesKey should be deterministic")
	}
	if !strings.HasPrefix(k.LibrariesKey(base), "libraries:") {
		t.Errorf("LibrariesKey = %s, want libraries: prefix", k.LibrariesKey(base))
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "mirror:corp:")
	if got := scoped.HTTPKey("central", "x"); got != "mirror:corp:http:central:x" {
		t.Errorf("HTTPKey = %s", got)
	}
	if got := scoped.LibrariesKey(LibrariesKeyOpts{}); !strings.HasPrefix(got, "mirror:corp:libraries:") {
		t.Errorf("LibrariesKey = %s", got)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"http:central:x", "http"},
		{"libraries:abc", "libraries"},
		{"mirror:corp:http:central:x", "http"},
		{"misc", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := keyType(tt.key); got != tt.want {
				t.Errorf("keyType(%q) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}
