package transform

import (
	"context"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// Chain runs transformers in order, feeding each the previous result.
type Chain []collect.GraphTransformer

// Transform implements collect.GraphTransformer.
func (c Chain) Transform(ctx context.Context, root *collect.Node) (*collect.Node, error) {
	var err error
	for _, t := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if root, err = t.Transform(ctx, root); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Default returns the conflict resolution chain for Java dependencies.
func Default() Chain {
	return Chain{
		Expand{},
		ConflictMarker{},
		ScopeCalculator{},
		NearestResolver{},
		ContextRefiner{},
	}
}

// key returns n's conflict key, falling back to its artifact identity when
// ConflictMarker did not run.
func key(n *collect.Node) string {
	if n.ConflictKey != "" {
		return n.ConflictKey
	}
	return n.Key()
}

// declared returns the scope n was declared with.
func declared(n *collect.Node) artifact.Scope {
	if n.Dependency == nil {
		return ""
	}
	return n.Dependency.Scope.Normalize()
}
