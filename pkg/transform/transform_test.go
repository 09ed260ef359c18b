package transform

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
	"github.com/teletha/bee-sub002/pkg/version"
)

// node builds a dependency node whose children get their declaration index
// from their position.
func node(coords string, scope artifact.Scope, kids ...*collect.Node) *collect.Node {
	d := artifact.NewDependency(artifact.MustParse(coords), scope)
	n := collect.NewNode(&d)
	n.Version = version.MustParse(d.Artifact.Version)
	adopt(n, kids...)
	return n
}

func project(kids ...*collect.Node) *collect.Node {
	root := collect.NewNode(nil)
	root.Artifact = artifact.MustParse("org.example:project:1.0")
	adopt(root, kids...)
	return root
}

func adopt(parent *collect.Node, kids ...*collect.Node) {
	for i, k := range kids {
		k.Index = i
		parent.ChildList().Append(k)
	}
}

func resolve(t *testing.T, root *collect.Node) *collect.Node {
	t.Helper()
	out, err := Default().Transform(context.Background(), root)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	return out
}

func names(nodes []*collect.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Artifact.ArtifactID + "-" + n.Artifact.Version
	}
	return out
}

func TestLibrariesByScope(t *testing.T) {
	tests := []struct {
		name string
		root func() *collect.Node
		want map[artifact.Scope]int
	}{
		{
			name: "compile_compile",
			root: func() *collect.Node {
				return project(node("org.example:one:1.0", artifact.Compile,
					node("org.example:nest:1.0", artifact.Compile)))
			},
			want: map[artifact.Scope]int{artifact.Compile: 2, artifact.Runtime: 2, artifact.Test: 0},
		},
		{
			name: "provided_runtime",
			root: func() *collect.Node {
				return project(node("org.example:one:1.0", artifact.Provided,
					node("org.example:nest:1.0", artifact.Runtime)))
			},
			want: map[artifact.Scope]int{artifact.Compile: 2, artifact.Provided: 2, artifact.Runtime: 0},
		},
		{
			name: "test scope narrows children",
			root: func() *collect.Node {
				return project(node("org.example:junit:4.0", artifact.Test,
					node("org.example:hamcrest:1.3", artifact.Compile)))
			},
			want: map[artifact.Scope]int{artifact.Compile: 0, artifact.Runtime: 0, artifact.Test: 2},
		},
		{
			name: "test scope narrows system children",
			root: func() *collect.Node {
				return project(node("org.example:harness:1.0", artifact.Test,
					node("org.example:tools:1.0", artifact.System)))
			},
			want: map[artifact.Scope]int{artifact.Compile: 0, artifact.Provided: 0, artifact.Runtime: 0, artifact.Test: 2},
		},
		{
			name: "runtime parent caps compile child",
			root: func() *collect.Node {
				return project(node("org.example:driver:1.0", artifact.Runtime,
					node("org.example:util:1.0", artifact.Compile)))
			},
			want: map[artifact.Scope]int{artifact.Compile: 0, artifact.Runtime: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := resolve(t, tt.root())
			for scope, want := range tt.want {
				if got := Libraries(root, scope); len(got) != want {
					t.Errorf("Libraries(%s) = %v, want %d", scope, names(got), want)
				}
			}
		})
	}
}

func TestNearestWins(t *testing.T) {
	build := func(reverse bool) *collect.Node {
		deep := node("org.example:x:1.0", artifact.Compile,
			node("org.example:y:1.0", artifact.Compile,
				node("org.example:c:2.0", artifact.Compile)))
		near := node("org.example:a:1.0", artifact.Compile,
			node("org.example:c:1.0", artifact.Compile))
		root := collect.NewNode(nil)
		deep.Index, near.Index = 0, 1
		// completion order must not matter
		if reverse {
			root.ChildList().Append(near)
			root.ChildList().Append(deep)
		} else {
			root.ChildList().Append(deep)
			root.ChildList().Append(near)
		}
		return root
	}

	for _, reverse := range []bool{false, true} {
		root := resolve(t, build(reverse))
		got := names(Libraries(root, artifact.Compile))
		want := []string{"a-1.0", "c-1.0", "x-1.0", "y-1.0"}
		if !slices.Equal(got, want) {
			t.Errorf("reverse=%v: Libraries = %v, want %v", reverse, got, want)
		}
	}
}

func TestNearestTieGoesToDeclarationOrder(t *testing.T) {
	root := resolve(t, project(
		node("org.example:a:1.0", artifact.Compile, node("org.example:c:1.0", artifact.Compile)),
		node("org.example:b:1.0", artifact.Compile, node("org.example:c:2.0", artifact.Compile)),
	))
	got := names(Libraries(root, artifact.Compile))
	want := []string{"a-1.0", "b-1.0", "c-1.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Libraries = %v, want %v", got, want)
	}
}

func TestProjectItselfIsExcluded(t *testing.T) {
	root := resolve(t, project(
		node("org.example:a:1.0", artifact.Compile, node("org.example:project:0.9", artifact.Compile)),
	))
	got := names(Libraries(root, artifact.Compile))
	if !slices.Equal(got, []string{"a-1.0"}) {
		t.Errorf("Libraries = %v, want [a-1.0]", got)
	}
}

func TestContextRefinerWidensScope(t *testing.T) {
	root := resolve(t, project(
		node("org.example:a:1.0", artifact.Test, node("org.example:c:1.0", artifact.Compile)),
		node("org.example:b:1.0", artifact.Compile, node("org.example:c:1.0", artifact.Runtime)),
	))

	winner := root.Children()[0].Children()[0]
	if winner.Scope != artifact.Runtime {
		t.Errorf("c scope = %s, want runtime", winner.Scope)
	}
	if n := len(root.Children()[1].Children()); n != 0 {
		t.Errorf("loser was not pruned, b has %d children", n)
	}
	got := names(Libraries(root, artifact.Runtime))
	if !slices.Equal(got, []string{"b-1.0", "c-1.0"}) {
		t.Errorf("Libraries(runtime) = %v, want [b-1.0 c-1.0]", got)
	}
}

func TestContextRefinerRederivesDescendants(t *testing.T) {
	root := resolve(t, project(
		node("org.example:a:1.0", artifact.Test,
			node("org.example:c:1.0", artifact.Compile,
				node("org.example:d:1.0", artifact.Compile))),
		node("org.example:b:1.0", artifact.Compile, node("org.example:c:1.0", artifact.Compile)),
	))
	d := root.Children()[0].Children()[0].Children()[0]
	if d.Scope != artifact.Compile {
		t.Errorf("d scope = %s, want compile after c was widened", d.Scope)
	}
}

func TestContextRefinerOptional(t *testing.T) {
	opt := func(n *collect.Node) *collect.Node {
		d := n.Dependency.WithOptional(true)
		n.Dependency = &d
		return n
	}
	root := collect.NewNode(nil)
	adopt(root,
		node("org.example:a:1.0", artifact.Compile, opt(node("org.example:c:1.0", artifact.Compile))),
		node("org.example:b:1.0", artifact.Compile, node("org.example:c:1.0", artifact.Compile)),
	)
	root = resolve(t, root)
	if c := root.Children()[0].Children()[0]; c.Optional {
		t.Error("c should not be optional when one occurrence is mandatory")
	}
}

func TestContextRefinerKeepLosers(t *testing.T) {
	root := project(
		node("org.example:a:1.0", artifact.Compile, node("org.example:c:1.0", artifact.Compile)),
		node("org.example:b:1.0", artifact.Compile, node("org.example:c:2.0", artifact.Compile)),
	)
	chain := Chain{Expand{}, ConflictMarker{}, ScopeCalculator{}, NearestResolver{}, ContextRefiner{KeepLosers: true}}
	root, err := chain.Transform(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	loser := root.Children()[1].Children()[0]
	if loser.Winner == nil || loser.Winner.Artifact.Version != "1.0" {
		t.Errorf("loser.Winner = %v, want c:1.0", loser.Winner)
	}
	if got := names(Libraries(root, artifact.Compile)); slices.Contains(got, "c-2.0") {
		t.Errorf("Libraries should skip losers, got %v", got)
	}
}

func TestConflictMarkerJoinsRelocations(t *testing.T) {
	moved := node("org.new:lib:2.0", artifact.Compile)
	moved.Relocations = []artifact.Artifact{artifact.MustParse("org.old:lib:1.0")}
	root := resolve(t, project(
		node("org.example:a:1.0", artifact.Compile, moved),
		node("org.example:b:1.0", artifact.Compile,
			node("org.example:x:1.0", artifact.Compile, node("org.old:lib:1.0", artifact.Compile))),
	))
	got := names(Libraries(root, artifact.Compile))
	want := []string{"a-1.0", "b-1.0", "lib-2.0", "x-1.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Libraries = %v, want %v", got, want)
	}
}

func TestExpandUnsharesChildLists(t *testing.T) {
	d := node("org.example:d:1.0", artifact.Compile)
	c1 := node("org.example:c:1.0", artifact.Compile, d)
	c2 := node("org.example:c:1.0", artifact.Compile)
	c2.ShareChildren(c1.ChildList())
	root := project(
		node("org.example:a:1.0", artifact.Compile, c1),
		node("org.example:b:1.0", artifact.Compile, c2),
	)

	out, err := Expand{}.Transform(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	x := out.Children()[0].Children()[0]
	y := out.Children()[1].Children()[0]
	if x.ChildList() == y.ChildList() {
		t.Error("expanded nodes should own their child lists")
	}
	if x.Children()[0] == y.Children()[0] {
		t.Error("shared grandchildren should be copied")
	}
	if x.Depth != 2 || x.Children()[0].Depth != 3 {
		t.Errorf("depths = %d, %d; want 2, 3", x.Depth, x.Children()[0].Depth)
	}
}

func TestExpandCutsCycles(t *testing.T) {
	a := node("org.example:a:1.0", artifact.Compile)
	b := node("org.example:b:1.0", artifact.Compile)
	a.ChildList().Append(b)
	b.ChildList().Append(a)
	root := project(a)

	out, err := Expand{}.Transform(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	leaf := out.Children()[0].Children()[0].Children()[0]
	if leaf.Artifact.ArtifactID != "a" || len(leaf.Children()) != 0 {
		t.Errorf("cycle should end at a leaf a, got %s with %d children", leaf, len(leaf.Children()))
	}
}

func TestExpandTooManyNodes(t *testing.T) {
	root := project(
		node("org.example:a:1.0", artifact.Compile),
		node("org.example:b:1.0", artifact.Compile),
		node("org.example:c:1.0", artifact.Compile),
	)
	_, err := Expand{MaxNodes: 3}.Transform(context.Background(), root)
	if !errors.Is(err, ErrTooManyNodes) {
		t.Errorf("err = %v, want ErrTooManyNodes", err)
	}
}

func TestChainStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Default().Transform(ctx, project()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDeriveScope(t *testing.T) {
	tests := []struct {
		parent, child, want artifact.Scope
	}{
		{artifact.Compile, artifact.Compile, artifact.Compile},
		{artifact.Compile, artifact.Runtime, artifact.Runtime},
		{"", artifact.Provided, artifact.Provided},
		{artifact.Compile, artifact.Test, artifact.Test},
		{artifact.Provided, artifact.System, artifact.System},
		{artifact.Test, artifact.Compile, artifact.Test},
		{artifact.Test, artifact.System, artifact.Test},
		{artifact.Test, artifact.Provided, artifact.Test},
		{artifact.Runtime, artifact.Compile, artifact.Runtime},
		{artifact.Provided, artifact.Runtime, artifact.Provided},
		{artifact.System, artifact.Compile, artifact.Provided},
		{artifact.AnnotationProcessing, artifact.Compile, artifact.AnnotationProcessing},
	}
	for _, tt := range tests {
		t.Run(string(tt.parent)+"/"+string(tt.child), func(t *testing.T) {
			if got := DeriveScope(tt.parent, tt.child); got != tt.want {
				t.Errorf("DeriveScope(%q, %q) = %s, want %s", tt.parent, tt.child, got, tt.want)
			}
		})
	}
}

func TestWidest(t *testing.T) {
	tests := []struct {
		in   []artifact.Scope
		want artifact.Scope
	}{
		{[]artifact.Scope{artifact.Test, artifact.Runtime}, artifact.Runtime},
		{[]artifact.Scope{artifact.Provided, artifact.Compile, artifact.Test}, artifact.Compile},
		{[]artifact.Scope{artifact.System}, artifact.System},
		{[]artifact.Scope{artifact.System, artifact.Test}, artifact.Test},
	}
	for _, tt := range tests {
		if got := widest(tt.in); got != tt.want {
			t.Errorf("widest(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestLibrariesOrder(t *testing.T) {
	root := resolve(t, project(
		node("org.example:zeta:1.0", artifact.Compile),
		node("org.example:alpha:2.0", artifact.Compile),
		node("org.other:alpha:1.0", artifact.Compile),
	))
	got := names(Libraries(root, artifact.Compile))
	want := []string{"alpha-1.0", "alpha-2.0", "zeta-1.0"}
	if !slices.Equal(got, want) {
		t.Errorf("Libraries = %v, want %v", got, want)
	}
}
