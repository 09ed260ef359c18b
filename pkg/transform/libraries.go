package transform

import (
	"slices"
	"strings"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// Libraries flattens a resolved tree into the nodes a build needs for
// query. A node is included when the query accepts its effective scope and
// neither it nor any ancestor lost a conflict. Effective scopes already
// carry the narrowing imposed by ancestors, so a rejected node's children
// are still visited. The root itself is never included. Each artifact
// version appears once; the result is sorted by "artifactId-version".
func Libraries(root *collect.Node, query artifact.Scope) []*collect.Node {
	if root == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []*collect.Node
	collect.Walk(root, func(n *collect.Node, parents []*collect.Node) bool {
		if len(parents) == 0 {
			return true
		}
		if n.Winner != nil {
			return false
		}
		if !query.Accepts(n.Scope) {
			return true
		}
		id := n.Artifact.Key() + ":" + n.Artifact.Version
		if !seen[id] {
			seen[id] = true
			out = append(out, n)
		}
		return true
	})
	slices.SortFunc(out, func(a, b *collect.Node) int {
		if c := strings.Compare(libraryName(a), libraryName(b)); c != 0 {
			return c
		}
		return strings.Compare(a.Artifact.String(), b.Artifact.String())
	})
	return out
}

func libraryName(n *collect.Node) string {
	return n.Artifact.ArtifactID + "-" + n.Artifact.Version
}
