package transform

import (
	"context"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// DeriveScope returns the effective scope of a dependency declared with
// child under a node whose effective scope is parent. Everything below a
// test dependency is test scoped.
func DeriveScope(parent, child artifact.Scope) artifact.Scope {
	child = child.Normalize()
	switch {
	case parent == artifact.Test:
		return artifact.Test
	case child == artifact.System || child == artifact.Test:
		return child
	case parent == "" || parent == artifact.Compile:
		return child
	case parent == artifact.Runtime:
		return parent
	case parent == artifact.System || parent == artifact.Provided:
		return artifact.Provided
	case parent == artifact.AnnotationProcessing:
		return artifact.AnnotationProcessing
	}
	return artifact.Runtime
}

// ScopeCalculator sets every node's Scope along its path from the root.
// Direct dependencies keep their declared scope.
type ScopeCalculator struct{}

// Transform implements collect.GraphTransformer.
func (ScopeCalculator) Transform(_ context.Context, root *collect.Node) (*collect.Node, error) {
	collect.Walk(root, func(n *collect.Node, parents []*collect.Node) bool {
		switch len(parents) {
		case 0:
		case 1:
			n.Scope = declared(n)
		default:
			n.Scope = DeriveScope(parents[len(parents)-1].Scope, declared(n))
		}
		return true
	})
	return root, nil
}

// scopeRank orders scopes from widest to narrowest.
var scopeRank = map[artifact.Scope]int{
	artifact.Compile:              0,
	artifact.Runtime:              1,
	artifact.Provided:             2,
	artifact.Test:                 3,
	artifact.AnnotationProcessing: 4,
}

// widest picks the widest of the given scopes. System wins only when it is
// the sole candidate.
func widest(scopes []artifact.Scope) artifact.Scope {
	var best artifact.Scope
	onlySystem := true
	for _, s := range scopes {
		if s == artifact.System {
			continue
		}
		onlySystem = false
		if best == "" || scopeRank[s] < scopeRank[best] {
			best = s
		}
	}
	if onlySystem && len(scopes) > 0 {
		return artifact.System
	}
	return best
}
