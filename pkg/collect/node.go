package collect

import (
	"slices"
	"sync"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/version"
)

// Node is a vertex of the collected dependency tree.
//
// During collection children are appended concurrently under a lock owned
// by the child list. Child lists can be shared between nodes that reached
// the same artifact in the same resolution context, so the collector's
// output is a graph; [github.com/teletha/bee-sub002/pkg/transform.Expand]
// turns it back into a tree before conflicts are resolved.
type Node struct {
	// Dependency is nil for the root of a bare dependency list.
	Dependency   *artifact.Dependency
	Artifact     artifact.Artifact
	Version      version.Version
	Constraint   version.Constraint
	Relocations  []artifact.Artifact
	Aliases      []artifact.Artifact
	Repositories []artifact.Repository
	Context      string

	// Index is the declaration position among the parent's dependencies.
	Index      int
	Premanaged Premanaged

	// Set by graph transformers.
	ConflictKey string
	Depth       int
	Scope       artifact.Scope
	Optional    bool
	Winner      *Node // non-nil when this node lost a version conflict

	children *Children
}

// Children is a child list safe for concurrent appends.
type Children struct {
	mu    sync.Mutex
	nodes []*Node
}

// NewChildren returns an empty child list.
func NewChildren() *Children { return &Children{} }

// Append adds a node.
func (c *Children) Append(n *Node) {
	c.mu.Lock()
	c.nodes = append(c.nodes, n)
	c.mu.Unlock()
}

// Nodes returns a snapshot of the list.
func (c *Children) Nodes() []*Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.nodes)
}

// Len returns the number of children.
func (c *Children) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *Children) sort() {
	c.mu.Lock()
	slices.SortStableFunc(c.nodes, CompareNodes)
	c.mu.Unlock()
}

// CompareNodes orders siblings by declaration, then by version descending.
func CompareNodes(a, b *Node) int {
	if a.Index != b.Index {
		return a.Index - b.Index
	}
	return b.Version.Compare(a.Version)
}

// NewNode creates a node for dep with an empty child list.
func NewNode(dep *artifact.Dependency) *Node {
	n := &Node{Dependency: dep, children: NewChildren()}
	if dep != nil {
		n.Artifact = dep.Artifact
		n.Scope = dep.Scope.Normalize()
		n.Optional = dep.Optional
	}
	return n
}

// Children returns a snapshot of the node's children.
func (n *Node) Children() []*Node {
	if n.children == nil {
		return nil
	}
	return n.children.Nodes()
}

// ChildList returns the node's live child list.
func (n *Node) ChildList() *Children {
	if n.children == nil {
		n.children = NewChildren()
	}
	return n.children
}

// SetChildren replaces the node's children with a private list.
func (n *Node) SetChildren(nodes []*Node) {
	n.children = &Children{nodes: nodes}
}

// ShareChildren makes n use c as its child list.
func (n *Node) ShareChildren(c *Children) {
	n.children = c
}

// Key returns the conflict identity of the node's artifact.
func (n *Node) Key() string { return n.Artifact.Key() }

// String returns the artifact coordinate.
func (n *Node) String() string {
	if n.Dependency == nil && n.Artifact.GroupID == "" {
		return "(root)"
	}
	return n.Artifact.String()
}

// Walk visits n and its descendants depth-first, calling fn with each node
// and its parent chain. Returning false from fn skips the node's children.
// Child lists are visited once per path; shared lists that form a cycle are
// cut at the first repetition.
func Walk(n *Node, fn func(n *Node, parents []*Node) bool) {
	walk(n, nil, map[*Children]bool{}, fn)
}

func walk(n *Node, parents []*Node, onPath map[*Children]bool, fn func(*Node, []*Node) bool) {
	if !fn(n, parents) || n.children == nil || onPath[n.children] {
		return
	}
	onPath[n.children] = true
	parents = append(parents, n)
	for _, c := range n.children.Nodes() {
		walk(c, parents, onPath, fn)
	}
	delete(onPath, n.children)
}

// sortTree sorts every reachable child list once.
func sortTree(root *Node) {
	seen := map[*Children]bool{}
	var visit func(*Node)
	visit = func(n *Node) {
		if n.children == nil || seen[n.children] {
			return
		}
		seen[n.children] = true
		n.children.sort()
		for _, c := range n.children.nodes {
			visit(c)
		}
	}
	visit(root)
}
