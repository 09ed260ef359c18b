package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/teletha/bee-sub002/pkg/collect"
)

type jsonGraph struct {
	Root  string `json:"root"`
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

type jsonNode struct {
	ID       string `json:"id"`
	Group    string `json:"group"`
	Name     string `json:"name"`
	Version  string `json:"version"`
	Scope    string `json:"scope,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Winner   string `json:"winner,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a collected tree as a vertex and edge list, with the
// same vertices and edges as [ToDOT]. Losers carry the id of their winner.
func WriteJSON(root *collect.Node, w io.Writer) error {
	out := jsonGraph{Nodes: []jsonNode{}, Edges: []jsonEdge{}}
	if root != nil {
		out.Root = vertexID(root)
		seen := map[string]bool{}
		seenEdge := map[jsonEdge]bool{}
		collect.Walk(root, func(n *collect.Node, parents []*collect.Node) bool {
			id := vertexID(n)
			if !seen[id] {
				seen[id] = true
				nd := jsonNode{
					ID:       id,
					Group:    n.Artifact.GroupID,
					Name:     n.Artifact.ArtifactID,
					Version:  n.Artifact.Version,
					Optional: n.Optional,
				}
				if len(parents) > 0 {
					nd.Scope = string(n.Scope.Normalize())
				}
				if n.Winner != nil {
					nd.Winner = vertexID(n.Winner)
				}
				out.Nodes = append(out.Nodes, nd)
			}
			if len(parents) > 0 {
				e := jsonEdge{From: vertexID(parents[len(parents)-1]), To: id}
				if !seenEdge[e] {
					seenEdge[e] = true
					out.Edges = append(out.Edges, e)
				}
			}
			return n.Winner == nil
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
