package transform

import (
	"context"
	"errors"
	"slices"

	"github.com/teletha/bee-sub002/pkg/collect"
)

// DefaultMaxNodes caps the size of an expanded tree.
const DefaultMaxNodes = 50000

// ErrTooManyNodes is returned when expanding shared subtrees would exceed
// Expand.MaxNodes.
var ErrTooManyNodes = errors.New("dependency tree too large to expand")

// Expand copies a collected graph into a tree. Every node gets a private
// child list sorted by declaration order, then by version descending, and
// Depth is set to the distance from the root. A node whose artifact already
// appears on its ancestor path is kept as a leaf.
type Expand struct {
	MaxNodes int // default DefaultMaxNodes
}

// Transform implements collect.GraphTransformer.
func (e Expand) Transform(ctx context.Context, root *collect.Node) (*collect.Node, error) {
	limit := e.MaxNodes
	if limit <= 0 {
		limit = DefaultMaxNodes
	}
	x := &expander{ctx: ctx, limit: limit, onPath: map[string]bool{}}
	return x.expand(root, 0)
}

type expander struct {
	ctx    context.Context
	limit  int
	count  int
	onPath map[string]bool
}

func (x *expander) expand(n *collect.Node, depth int) (*collect.Node, error) {
	x.count++
	if x.count > x.limit {
		return nil, ErrTooManyNodes
	}
	if x.count%1024 == 0 {
		if err := x.ctx.Err(); err != nil {
			return nil, err
		}
	}

	c := *n
	c.Depth = depth
	c.SetChildren(nil)

	id := n.Key()
	if depth > 0 || n.Dependency != nil {
		if x.onPath[id] {
			return &c, nil
		}
		x.onPath[id] = true
		defer delete(x.onPath, id)
	}

	kids := n.Children()
	out := make([]*collect.Node, 0, len(kids))
	for _, k := range kids {
		ek, err := x.expand(k, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, ek)
	}
	slices.SortStableFunc(out, collect.CompareNodes)
	c.SetChildren(out)
	return &c, nil
}
