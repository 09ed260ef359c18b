package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/observability"
	"github.com/teletha/bee-sub002/pkg/resolve"
)

func pom(name, deps string) string {
	return fmt.Sprintf(`<project><groupId>org.example</groupId><artifactId>%s</artifactId><version>1.0</version><dependencies>%s</dependencies></project>`, name, deps)
}

func dep(name, scope string) string {
	return fmt.Sprintf(`<dependency><groupId>org.example</groupId><artifactId>%s</artifactId><version>1.0</version><scope>%s</scope></dependency>`, name, scope)
}

// fakeRepository serves org.example:a:1.0, which needs b (compile) and
// c (runtime).
func fakeRepository(t *testing.T) string {
	t.Helper()
	files := map[string]string{
		"org/example/a/1.0/a-1.0.pom": pom("a", dep("b", "compile")+dep("c", "runtime")),
		"org/example/b/1.0/b-1.0.pom": pom("b", ""),
		"org/example/c/1.0/c-1.0.pom": pom("c", ""),
	}
	r := chi.NewRouter()
	r.Get("/maven2/*", func(w http.ResponseWriter, req *http.Request) {
		body, ok := files[chi.URLParam(req, "*")]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Write([]byte(body))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/maven2"
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out, errOut bytes.Buffer
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func newTestCLI() *CLI {
	return New(&bytes.Buffer{}, LogInfo)
}

func TestResolveCoordinate(t *testing.T) {
	repo := fakeRepository(t)
	tests := []struct {
		scope string
		want  string
	}{
		{"compile", "org.example:b:jar:1.0\n"},
		{"runtime", "org.example:b:jar:1.0\norg.example:c:jar:1.0\n"},
		{"test", ""},
	}
	for _, tt := range tests {
		t.Run(tt.scope, func(t *testing.T) {
			out, err := execute(t, newTestCLI(), "resolve", "org.example:a:1.0",
				"--repo", repo, "--no-central", "--no-cache", "--format", "list", "--scope", tt.scope)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestResolveProject(t *testing.T) {
	repo := fakeRepository(t)
	dir := t.TempDir()
	project := fmt.Sprintf(`
central = false

[project]
group = "org.example"
name = "app"

[[repositories]]
id = "fake"
url = %q

[[dependencies]]
coordinate = "org.example:a:1.0"
`, repo)
	if err := os.WriteFile(filepath.Join(dir, "bee.toml"), []byte(project), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, newTestCLI(), "resolve", "-p", dir, "--no-cache", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var libs []resolve.Library
	if err := json.Unmarshal([]byte(out), &libs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	var names []string
	for _, l := range libs {
		names = append(names, l.String())
		if l.Repository != "fake" {
			t.Errorf("%s from %q, want fake", l, l.Repository)
		}
	}
	if got := strings.Join(names, ","); got != "a-1.0,b-1.0" {
		t.Errorf("libraries = %s, want a-1.0,b-1.0", got)
	}
}

func TestResolveErrors(t *testing.T) {
	repo := fakeRepository(t)
	tests := []struct {
		name string
		args []string
		want errors.Code
	}{
		{"format", []string{"resolve", "org.example:a:1.0", "--format", "xml"}, errors.ErrCodeInvalidFormat},
		{"coordinate", []string{"resolve", "not-a-coordinate", "--no-cache"}, errors.ErrCodeInvalidCoordinate},
		{"no repositories", []string{"resolve", "org.example:a:1.0", "--no-central", "--no-cache"}, errors.ErrCodeInvalidInput},
		{"bad repository", []string{"resolve", "org.example:a:1.0", "--repo", "ftp://x", "--no-cache"}, errors.ErrCodeInvalidInput},
		{"no project", []string{"resolve", "-p", t.TempDir(), "--no-cache"}, errors.ErrCodeNotFound},
		{"missing artifact", []string{"resolve", "org.example:zzz:1.0", "--repo", repo, "--no-central", "--no-cache"}, errors.ErrCodeArtifactNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, newTestCLI(), tt.args...)
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestTreeCommand(t *testing.T) {
	repo := fakeRepository(t)
	out, err := execute(t, newTestCLI(), "tree", "org.example:a:1.0",
		"--repo", repo, "--no-central", "--no-cache", "--plain")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"org.example:a:jar:1.0", "org.example:b:jar:1.0", "org.example:c:jar:1.0 [runtime]"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree lacks %q:\n%s", want, out)
		}
	}
}

func TestGraphCommand(t *testing.T) {
	repo := fakeRepository(t)
	path := filepath.Join(t.TempDir(), "deps.dot")
	if _, err := execute(t, newTestCLI(), "graph", "org.example:a:1.0",
		"--repo", repo, "--no-central", "--no-cache", "--format", "dot", "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"org.example:a:jar:1.0" -> "org.example:c:jar:1.0"`) {
		t.Errorf("unexpected DOT:\n%s", data)
	}

	out, err := execute(t, newTestCLI(), "graph", "org.example:a:1.0",
		"--repo", repo, "--no-central", "--no-cache", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"root": "org.example:a:jar:1.0"`) || !strings.Contains(out, `"to": "org.example:c:jar:1.0"`) {
		t.Errorf("unexpected JSON:\n%s", out)
	}

	if _, err := execute(t, newTestCLI(), "graph", "--format", "gif"); errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("gif accepted: %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, newTestCLI(), "cache", "path", "--cache-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}

	// A resolution fills the cache, clear empties it.
	repo := fakeRepository(t)
	if _, err := execute(t, newTestCLI(), "resolve", "org.example:a:1.0", "--repo", repo, "--no-central", "--cache-dir", dir); err != nil {
		t.Fatal(err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) == 0 {
		t.Fatal("resolution cached nothing")
	}
	if _, err := execute(t, newTestCLI(), "cache", "clear", "--cache-dir", dir); err != nil {
		t.Fatal(err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("cache clear left %d entries", len(entries))
	}
}

func TestCachePathDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)
	out, err := execute(t, newTestCLI(), "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, appName); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestMetricsFile(t *testing.T) {
	t.Cleanup(observability.Reset)
	repo := fakeRepository(t)
	path := filepath.Join(t.TempDir(), "bee.prom")

	c := newTestCLI()
	if _, err := execute(t, c, "resolve", "org.example:a:1.0", "--repo", repo, "--no-central", "--no-cache", "--metrics-file", path); err != nil {
		t.Fatal(err)
	}
	if err := c.Finish(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `bee_collections_total{result="ok"} 1`) {
		t.Errorf("metrics lack collection count:\n%s", data)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, newTestCLI(), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "version: ") {
		t.Errorf("version output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, newTestCLI(), "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "__start_bee") {
		t.Errorf("bash completion does not define __start_bee:\n%.200s", out)
	}
}

func TestFormatError(t *testing.T) {
	err := errors.Wrap(errors.ErrCodeTimeout, context.DeadlineExceeded, "collection timed out")
	got := FormatError(err)
	if !strings.Contains(got, "TIMEOUT") || !strings.Contains(got, "collection timed out") {
		t.Errorf("FormatError() = %q", got)
	}
	if strings.Contains(got, "deadline") {
		t.Errorf("FormatError() leaks the cause: %q", got)
	}
	if !strings.Contains(got, "--timeout") {
		t.Errorf("FormatError() lacks the hint: %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidFormat, "bad"), 2},
		{errors.New(errors.ErrCodeArtifactNotFound, "missing"), 1},
		{context.DeadlineExceeded, 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
