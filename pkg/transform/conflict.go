package transform

import (
	"context"

	"github.com/teletha/bee-sub002/pkg/collect"
)

// ConflictMarker sets ConflictKey on every node. Artifacts linked by a
// relocation or an alias share one key, so the old and new coordinates of a
// relocated library compete with each other.
type ConflictMarker struct{}

// Transform implements collect.GraphTransformer.
func (ConflictMarker) Transform(_ context.Context, root *collect.Node) (*collect.Node, error) {
	parent := map[string]string{}
	var find func(string) string
	find = func(k string) string {
		p, ok := parent[k]
		if !ok || p == k {
			return k
		}
		r := find(p)
		parent[k] = r
		return r
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// smallest key represents the set
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	collect.Walk(root, func(n *collect.Node, _ []*collect.Node) bool {
		k := n.Key()
		for _, a := range n.Relocations {
			union(k, a.Key())
		}
		for _, a := range n.Aliases {
			union(k, a.Key())
		}
		return true
	})
	collect.Walk(root, func(n *collect.Node, _ []*collect.Node) bool {
		n.ConflictKey = find(n.Key())
		return true
	})
	return root, nil
}

// NearestResolver picks, for every conflict key, the occurrence closest to
// the root. Ties go to the occurrence visited first in breadth-first order,
// which follows declaration order. Losers get Winner set; their subtrees are
// not considered. Occurrences of the project's own artifact always lose.
type NearestResolver struct{}

// Transform implements collect.GraphTransformer.
func (NearestResolver) Transform(ctx context.Context, root *collect.Node) (*collect.Node, error) {
	winners := map[string]*collect.Node{}
	if root.Artifact.GroupID != "" {
		winners[key(root)] = root
	}
	queue := []*collect.Node{root}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Children() {
			k := key(c)
			if w, ok := winners[k]; ok {
				c.Winner = w
				continue
			}
			c.Winner = nil
			winners[k] = c
			queue = append(queue, c)
		}
	}
	return root, nil
}
