package transform

import (
	"context"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// ContextRefiner settles scope and optionality after conflicts were
// resolved.
//
// A direct dependency keeps what it declared. Any other winner takes the
// widest scope among all occurrences of its conflict key that were
// reachable through winners, and is optional only if every occurrence is.
// Descendants are re-derived from the refined values. Conflict keys are
// processed parents first so each node is derived from a final parent.
type ContextRefiner struct {
	// KeepLosers leaves losing nodes in the tree, marked by Winner.
	KeepLosers bool
}

type occurrence struct {
	node, parent *collect.Node
}

// Transform implements collect.GraphTransformer.
func (r ContextRefiner) Transform(ctx context.Context, root *collect.Node) (*collect.Node, error) {
	byKey := map[string][]occurrence{}
	var keys []string
	edges := map[string]map[string]bool{}

	queue := []*collect.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, c := range n.Children() {
			k := key(c)
			if _, ok := byKey[k]; !ok {
				keys = append(keys, k)
			}
			byKey[k] = append(byKey[k], occurrence{node: c, parent: n})
			if n != root {
				pk := key(n)
				if edges[pk] == nil {
					edges[pk] = map[string]bool{}
				}
				edges[pk][k] = true
			}
			if c.Winner == nil {
				queue = append(queue, c)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, k := range topoOrder(keys, edges) {
		refine(root, byKey[k])
	}

	if !r.KeepLosers {
		prune(root)
	}
	return root, nil
}

func refine(root *collect.Node, occs []occurrence) {
	scopes := make([]artifact.Scope, 0, len(occs))
	allOptional := true
	for _, o := range occs {
		n := o.node
		if o.parent == root {
			n.Scope = declared(n)
			n.Optional = n.Dependency != nil && n.Dependency.Optional
		} else {
			n.Scope = DeriveScope(o.parent.Scope, declared(n))
			n.Optional = (n.Dependency != nil && n.Dependency.Optional) || o.parent.Optional
		}
		scopes = append(scopes, n.Scope)
		allOptional = allOptional && n.Optional
	}
	for _, o := range occs {
		if o.node.Winner != nil || o.parent == root {
			continue
		}
		o.node.Scope = widest(scopes)
		o.node.Optional = allOptional
	}
}

// topoOrder sorts keys so that a key comes after every key with an edge
// into it. Keys on a cycle keep their breadth-first order.
func topoOrder(keys []string, edges map[string]map[string]bool) []string {
	indegree := make(map[string]int, len(keys))
	for _, to := range edges {
		for k := range to {
			indegree[k]++
		}
	}
	// Seed in breadth-first order so the result is deterministic.
	order := make([]string, 0, len(keys))
	done := make(map[string]bool, len(keys))
	var ready []string
	for _, k := range keys {
		if indegree[k] == 0 {
			ready = append(ready, k)
		}
	}
	for len(order) < len(keys) {
		if len(ready) == 0 {
			for _, k := range keys {
				if !done[k] {
					ready = append(ready, k)
					break
				}
			}
		}
		k := ready[0]
		ready = ready[1:]
		if done[k] {
			continue
		}
		done[k] = true
		order = append(order, k)
		for _, next := range keys {
			if !edges[k][next] || done[next] {
				continue
			}
			indegree[next]--
			if indegree[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	return order
}

// prune removes losers from the tree.
func prune(n *collect.Node) {
	kids := n.Children()
	kept := kids[:0]
	for _, c := range kids {
		if c.Winner != nil {
			continue
		}
		prune(c)
		kept = append(kept, c)
	}
	if len(kept) != len(kids) {
		n.SetChildren(kept)
	}
}
