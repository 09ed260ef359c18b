package repository

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
	beeerrors "github.com/teletha/bee-sub002/pkg/errors"
	"github.com/teletha/bee-sub002/pkg/httputil"
)

// mapFetcher serves files from memory, keyed by repository id and path.
type mapFetcher struct {
	files map[string]map[string]string
	calls atomic.Int32
}

func newMapFetcher() *mapFetcher {
	return &mapFetcher{files: make(map[string]map[string]string)}
}

func (f *mapFetcher) put(repo, path, body string) {
	if f.files[repo] == nil {
		f.files[repo] = make(map[string]string)
	}
	f.files[repo][path] = body
}

func (f *mapFetcher) Fetch(_ context.Context, repo artifact.Repository, path string) ([]byte, error) {
	f.calls.Add(1)
	body, ok := f.files[repo.ID][path]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(body), nil
}

var (
	repoA = artifact.Repository{ID: "a", URL: "https://a.example/maven2/"}
	repoB = artifact.Repository{ID: "b", URL: "https://b.example/maven2"}
)

func metadata(versions ...string) string {
	s := `<metadata><groupId>org.example</groupId><artifactId>lib</artifactId><versioning><versions>`
	for _, v := range versions {
		s += "<version>" + v + "</version>"
	}
	return s + `</versions></versioning></metadata>`
}

func versionStrings(r *collect.RangeResult) []string {
	out := make([]string, len(r.Versions))
	for i, v := range r.Versions {
		out[i] = v.String()
	}
	return out
}

func TestRangeResolverSoftVersion(t *testing.T) {
	f := newMapFetcher()
	r := NewRangeResolver(f, nil)

	res, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact:     artifact.MustParse("org.example:lib:1.2"),
		Repositories: []artifact.Repository{repoA},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := versionStrings(res); !slices.Equal(got, []string{"1.2"}) {
		t.Errorf("versions = %v", got)
	}
	if f.calls.Load() != 0 {
		t.Errorf("soft version fetched %d files", f.calls.Load())
	}
}

func TestRangeResolverRange(t *testing.T) {
	f := newMapFetcher()
	f.put("a", "org/example/lib/maven-metadata.xml", metadata("1.0", "1.5", "2.0", "${bad}"))
	f.put("b", "org/example/lib/maven-metadata.xml", metadata("1.5", "1.7", "3.0"))
	r := NewRangeResolver(f, nil)

	tests := []struct {
		constraint string
		want       []string
	}{
		{"[1.0,2.0)", []string{"1.0", "1.5", "1.7"}},
		{"[1.5]", []string{"1.5"}},
		{"(,1.0],[2.0,)", []string{"1.0", "2.0", "3.0"}},
		{"[4.0,)", nil},
		{"LATEST", []string{"3.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			res, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
				Artifact:     artifact.New("org.example", "lib", tt.constraint),
				Repositories: []artifact.Repository{repoA, repoB},
			})
			if err != nil {
				t.Fatal(err)
			}
			if got := versionStrings(res); !slices.Equal(got, tt.want) {
				t.Errorf("versions = %v, want %v", got, tt.want)
			}
		})
	}

	res, _ := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact:     artifact.New("org.example", "lib", "[1.0,)"),
		Repositories: []artifact.Repository{repoA, repoB},
	})
	if res.Repositories["1.5"].ID != "a" {
		t.Errorf("1.5 served by %s, want first repository a", res.Repositories["1.5"].ID)
	}
	if res.Repositories["1.7"].ID != "b" {
		t.Errorf("1.7 served by %s, want b", res.Repositories["1.7"].ID)
	}
}

func TestRangeResolverRelease(t *testing.T) {
	f := newMapFetcher()
	f.put("a", "org/example/lib/maven-metadata.xml", metadata("1.0", "1.1", "1.2-SNAPSHOT"))
	r := NewRangeResolver(f, nil)

	for constraint, want := range map[string]string{"RELEASE": "1.1", "LATEST": "1.2-SNAPSHOT"} {
		res, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
			Artifact:     artifact.New("org.example", "lib", constraint),
			Repositories: []artifact.Repository{repoA},
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := versionStrings(res); !slices.Equal(got, []string{want}) {
			t.Errorf("%s = %v, want %s", constraint, got, want)
		}
	}
}

func TestRangeResolverErrors(t *testing.T) {
	r := NewRangeResolver(newMapFetcher(), nil)

	_, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact: artifact.New("org.example", "lib", "[1.0"),
	})
	var rangeErr *collect.VersionRangeError
	if !errors.As(err, &rangeErr) {
		t.Errorf("malformed constraint: err = %v, want VersionRangeError", err)
	}

	res, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact:     artifact.New("org.example", "lib", "[1.0,)"),
		Repositories: []artifact.Repository{repoA},
	})
	if err != nil || len(res.Versions) != 0 {
		t.Errorf("missing metadata = %v, %v; want empty result", res, err)
	}
}

func TestRangeResolverRepositoryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := httputil.NewClient(httputil.ClientOptions{Retries: 1})
	r := NewRangeResolver(NewTransport(client, false), nil)
	_, err := r.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact:     artifact.New("org.example", "lib", "[1.0,)"),
		Repositories: []artifact.Repository{{ID: "broken", URL: srv.URL}},
	})
	var rangeErr *collect.VersionRangeError
	if !errors.As(err, &rangeErr) || !errors.Is(err, httputil.ErrNetwork) {
		t.Errorf("err = %v, want VersionRangeError wrapping ErrNetwork", err)
	}
}

const parentPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>parent</artifactId>
  <version>7</version>
  <packaging>pom</packaging>
  <properties>
    <guava.version>32.1.3-jre</guava.version>
    <slf4j.version>1.7.36</slf4j.version>
  </properties>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>${slf4j.version}</version>
      </dependency>
      <dependency>
        <groupId>org.example</groupId>
        <artifactId>bom</artifactId>
        <version>1.0</version>
        <type>pom</type>
        <scope>import</scope>
      </dependency>
    </dependencies>
  </dependencyManagement>
  <dependencies>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`

const bomPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>bom</artifactId>
  <version>1.0</version>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.example</groupId>
        <artifactId>managed-by-bom</artifactId>
        <version>${project.version}.5</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const childPOM = `<project>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>7</version>
  </parent>
  <artifactId>lib</artifactId>
  <properties>
    <slf4j.version>2.0.9</slf4j.version>
  </properties>
  <repositories>
    <repository><id>extra</id><url>https://extra.example/repo</url></repository>
  </repositories>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
      <exclusions>
        <exclusion><groupId>com.google.code.findbugs</groupId><artifactId>*</artifactId></exclusion>
      </exclusions>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
    </dependency>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>managed-by-bom</artifactId>
      <scope>runtime</scope>
    </dependency>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>fixtures</artifactId>
      <version>${project.version}</version>
      <type>test-jar</type>
      <scope>test</scope>
      <optional>true</optional>
    </dependency>
    <dependency>
      <groupId>com.sun</groupId>
      <artifactId>tools</artifactId>
      <version>1.8</version>
      <scope>system</scope>
      <systemPath>/opt/jdk/lib/tools.jar</systemPath>
    </dependency>
    <dependency>
      <groupId>${unknown.group}</groupId>
      <artifactId>skipped</artifactId>
      <version>1</version>
    </dependency>
  </dependencies>
</project>`

func pomFetcher() *mapFetcher {
	f := newMapFetcher()
	f.put("a", "org/example/parent/7/parent-7.pom", parentPOM)
	f.put("a", "org/example/bom/1.0/bom-1.0.pom", bomPOM)
	f.put("a", "org/example/lib/7/lib-7.pom", childPOM)
	return f
}

func TestDescriptorReader(t *testing.T) {
	r := NewDescriptorReader(pomFetcher(), nil)
	res, err := r.ReadDescriptor(context.Background(), collect.DescriptorRequest{
		Artifact:     artifact.MustParse("org.example:lib:7"),
		Repositories: []artifact.Repository{repoA},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]artifact.Dependency)
	var order []string
	for _, d := range res.Dependencies {
		got[d.Artifact.ArtifactID] = d
		order = append(order, d.Artifact.ArtifactID)
	}
	wantOrder := []string{"guava", "slf4j-api", "managed-by-bom", "fixtures", "tools", "junit"}
	if !slices.Equal(order, wantOrder) {
		t.Fatalf("dependencies = %v, want %v", order, wantOrder)
	}

	tests := []struct {
		id, version string
		scope       artifact.Scope
	}{
		{"guava", "32.1.3-jre", artifact.Compile},
		{"slf4j-api", "2.0.9", artifact.Compile},
		{"managed-by-bom", "1.0.5", artifact.Runtime},
		{"fixtures", "7", artifact.Test},
		{"junit", "4.13.2", artifact.Test},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d := got[tt.id]
			if d.Artifact.Version != tt.version || d.Scope != tt.scope {
				t.Errorf("%s = %s %s, want %s %s", tt.id, d.Artifact.Version, d.Scope, tt.version, tt.scope)
			}
		})
	}

	if ex := got["guava"].Exclusions; len(ex) != 1 || ex[0].GroupID != "com.google.code.findbugs" || ex[0].ArtifactID != "*" {
		t.Errorf("guava exclusions = %v", ex)
	}
	fx := got["fixtures"].Artifact
	if !got["fixtures"].Optional || fx.Classifier != "tests" || fx.Extension != "jar" || fx.Property(artifact.PropType) != "test-jar" {
		t.Errorf("fixtures = %+v", got["fixtures"])
	}
	if got["tools"].Artifact.LocalPath() != "/opt/jdk/lib/tools.jar" {
		t.Errorf("system path = %q", got["tools"].Artifact.LocalPath())
	}

	if len(res.Repositories) != 1 || res.Repositories[0].ID != "extra" {
		t.Errorf("repositories = %v", res.Repositories)
	}
	var managed []string
	for _, d := range res.Managed {
		managed = append(managed, d.Artifact.Coordinate()+":"+d.Artifact.Version)
	}
	if !slices.Equal(managed, []string{"org.slf4j:slf4j-api:2.0.9", "org.example:managed-by-bom:1.0.5"}) {
		t.Errorf("managed = %v", managed)
	}
	if res.Properties["guava.version"] != "32.1.3-jre" {
		t.Errorf("inherited property missing: %v", res.Properties)
	}
}

func TestDescriptorReaderRelocation(t *testing.T) {
	f := newMapFetcher()
	f.put("a", "old/lib/1/lib-1.pom", `<project><groupId>old</groupId><artifactId>lib</artifactId><version>1</version>
		<distributionManagement><relocation><groupId>new</groupId></relocation></distributionManagement></project>`)
	f.put("a", "new/lib/1/lib-1.pom", `<project><groupId>new</groupId><artifactId>lib</artifactId><version>1</version>
		<dependencies><dependency><groupId>x</groupId><artifactId>y</artifactId><version>2</version></dependency></dependencies></project>`)
	f.put("a", "self/lib/1/lib-1.pom", `<project><groupId>self</groupId><artifactId>lib</artifactId><version>1</version>
		<distributionManagement><relocation><groupId>self</groupId></relocation></distributionManagement></project>`)
	f.put("a", "ping/lib/1/lib-1.pom", `<project><groupId>ping</groupId><artifactId>lib</artifactId><version>1</version>
		<distributionManagement><relocation><groupId>pong</groupId></relocation></distributionManagement></project>`)
	f.put("a", "pong/lib/1/lib-1.pom", `<project><groupId>pong</groupId><artifactId>lib</artifactId><version>1</version>
		<distributionManagement><relocation><groupId>ping</groupId></relocation></distributionManagement></project>`)
	r := NewDescriptorReader(f, nil)
	read := func(coords string) (*collect.DescriptorResult, error) {
		return r.ReadDescriptor(context.Background(), collect.DescriptorRequest{
			Artifact:     artifact.MustParse(coords),
			Repositories: []artifact.Repository{repoA},
		})
	}

	res, err := read("old:lib:1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Artifact.String() != "new:lib:jar:1" {
		t.Errorf("artifact = %s, want new:lib:jar:1", res.Artifact)
	}
	if len(res.Relocations) != 1 || res.Relocations[0].GroupID != "old" {
		t.Errorf("relocations = %v", res.Relocations)
	}
	if len(res.Dependencies) != 1 {
		t.Errorf("dependencies = %v", res.Dependencies)
	}

	res, err = read("self:lib:1")
	if err != nil || len(res.Relocations) != 0 {
		t.Errorf("self relocation = %v, %v; want ignored", res, err)
	}

	_, err = read("ping:lib:1")
	var descErr *collect.DescriptorError
	if !errors.As(err, &descErr) {
		t.Errorf("relocation cycle: err = %v, want DescriptorError", err)
	}
}

func TestDescriptorReaderNotFound(t *testing.T) {
	r := NewDescriptorReader(newMapFetcher(), nil)
	_, err := r.ReadDescriptor(context.Background(), collect.DescriptorRequest{
		Artifact:     artifact.MustParse("org.example:missing:1"),
		Repositories: []artifact.Repository{repoA, repoB},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDescriptorReaderParentCycle(t *testing.T) {
	f := newMapFetcher()
	f.put("a", "g/a/1/a-1.pom", `<project><parent><groupId>g</groupId><artifactId>b</artifactId><version>1</version></parent><artifactId>a</artifactId></project>`)
	f.put("a", "g/b/1/b-1.pom", `<project><parent><groupId>g</groupId><artifactId>a</artifactId><version>1</version></parent><artifactId>b</artifactId></project>`)
	r := NewDescriptorReader(f, nil)
	_, err := r.ReadDescriptor(context.Background(), collect.DescriptorRequest{
		Artifact:     artifact.MustParse("g:a:1"),
		Repositories: []artifact.Repository{repoA},
	})
	if err == nil {
		t.Error("parent cycle should fail")
	}
}

// fakeRepository serves a Maven repository layout from files.
func fakeRepository(t *testing.T, files map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	r := chi.NewRouter()
	r.Get("/maven2/*", func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		body, ok := files[chi.URLParam(req, "*")]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(body))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestTransportHTTP(t *testing.T) {
	srv, hits := fakeRepository(t, map[string]string{
		"org/example/lib/maven-metadata.xml": metadata("1.0", "1.1"),
		"org/example/lib/1.1/lib-1.1.pom":    `<project><groupId>org.example</groupId><artifactId>lib</artifactId><version>1.1</version></project>`,
	})
	repo := artifact.Repository{ID: "fake", URL: srv.URL + "/maven2/"}
	tr := NewTransport(httputil.NewClient(httputil.ClientOptions{Delay: time.Millisecond}), false)

	ranges := NewRangeResolver(tr, nil)
	rr, err := ranges.ResolveVersionRange(context.Background(), collect.RangeRequest{
		Artifact:     artifact.New("org.example", "lib", "[1.0,2.0)"),
		Repositories: []artifact.Repository{repo},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := versionStrings(rr); !slices.Equal(got, []string{"1.0", "1.1"}) {
		t.Errorf("versions = %v", got)
	}

	reader := NewDescriptorReader(tr, nil)
	if _, err := reader.ReadDescriptor(context.Background(), collect.DescriptorRequest{
		Artifact:     artifact.MustParse("org.example:lib:1.1"),
		Repositories: []artifact.Repository{repo},
	}); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("server hits = %d, want 2", hits.Load())
	}

	if _, err := tr.Fetch(context.Background(), repo, "nope.pom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: err = %v, want ErrNotFound", err)
	}
}

func TestTransportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "org", "example", "lib", "1.0")
	os.MkdirAll(path, 0o755)
	os.WriteFile(filepath.Join(path, "lib-1.0.pom"), []byte("<project/>"), 0o644)

	repo := artifact.Repository{ID: "local", URL: "file://" + filepath.ToSlash(dir)}
	tr := NewTransport(nil, false)

	data, err := tr.Fetch(context.Background(), repo, "org/example/lib/1.0/lib-1.0.pom")
	if err != nil || string(data) != "<project/>" {
		t.Errorf("Fetch = %q, %v", data, err)
	}
	if _, err := tr.Fetch(context.Background(), repo, "org/example/lib/2.0/lib-2.0.pom"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing file: err = %v, want ErrNotFound", err)
	}
	if _, err := tr.Fetch(context.Background(), artifact.Repository{ID: "x", URL: "ftp://host/"}, "a"); err == nil {
		t.Error("unsupported scheme should fail")
	}
	if _, err := tr.Fetch(context.Background(), repo, "org/../../etc/passwd"); !beeerrors.Is(err, beeerrors.ErrCodeInvalidPath) {
		t.Errorf("path escaping the repository: err = %v, want %s", err, beeerrors.ErrCodeInvalidPath)
	}
}

func TestManagerAggregate(t *testing.T) {
	dup := artifact.Repository{ID: "central-mirror", URL: "https://repo1.maven.org/maven2"}
	sameID := artifact.Repository{ID: "a", URL: "https://other.example/"}
	got := Manager{}.AggregateRepositories(
		[]artifact.Repository{artifact.Central, repoA},
		[]artifact.Repository{dup, sameID, repoB},
	)
	var ids []string
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if !slices.Equal(ids, []string{"central", "a", "b"}) {
		t.Errorf("AggregateRepositories = %v", ids)
	}
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata([]byte(`<metadata><groupId>g</groupId><artifactId>a</artifactId>
		<versioning><latest>2.0</latest><release>1.9</release><versions><version>1.9</version><version>2.0</version></versions></versioning></metadata>`))
	if err != nil {
		t.Fatal(err)
	}
	if md.Versioning.Latest != "2.0" || md.Versioning.Release != "1.9" || len(md.Versioning.Versions) != 2 {
		t.Errorf("metadata = %+v", md)
	}
	if _, err := ParseMetadata([]byte("<metadata>")); err == nil {
		t.Error("truncated document should fail")
	}
}
