package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Detailed adds scope and classifier lines to vertex labels.
	Detailed bool
}

// ToDOT converts a collected tree to Graphviz DOT source. Each artifact
// version becomes one vertex, so a dependency reached along several paths
// has several incoming edges. Conflict losers are drawn dashed with an edge
// to the version that replaced them.
func ToDOT(root *collect.Node, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if root == nil {
		buf.WriteString("}\n")
		return buf.String()
	}
	buf.WriteString("\n")

	var vertices, edges []string
	seenVertex := map[string]bool{}
	seenEdge := map[string]bool{}
	addVertex := func(n *collect.Node, attrs []string) {
		id := vertexID(n)
		if seenVertex[id] {
			return
		}
		seenVertex[id] = true
		vertices = append(vertices, fmt.Sprintf("  %q [%s];", id, strings.Join(attrs, ", ")))
	}
	addEdge := func(from, to string, attrs ...string) {
		e := from + "\x00" + to
		if seenEdge[e] {
			return
		}
		seenEdge[e] = true
		line := fmt.Sprintf("  %q -> %q", from, to)
		if len(attrs) > 0 {
			line += " [" + strings.Join(attrs, ", ") + "]"
		}
		edges = append(edges, line+";")
	}

	addVertex(root, []string{fmt.Sprintf("label=%q", root.String()), "fillcolor=lightblue"})
	collect.Walk(root, func(n *collect.Node, parents []*collect.Node) bool {
		if len(parents) == 0 {
			return true
		}
		parent := parents[len(parents)-1]
		addVertex(n, vertexAttrs(n, opts.Detailed))
		if n.Winner != nil {
			addEdge(vertexID(parent), vertexID(n), "style=dashed", "color=grey")
			addVertex(n.Winner, vertexAttrs(n.Winner, opts.Detailed))
			addEdge(vertexID(n), vertexID(n.Winner), "style=dotted", "color=grey", "label=\"conflict\"")
			return false
		}
		addEdge(vertexID(parent), vertexID(n))
		return true
	})

	for _, v := range vertices {
		buf.WriteString(v + "\n")
	}
	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e + "\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func vertexID(n *collect.Node) string {
	if n.Dependency == nil && n.Artifact.GroupID == "" {
		return "(root)"
	}
	return n.Artifact.String()
}

func vertexAttrs(n *collect.Node, detailed bool) []string {
	a := n.Artifact
	label := a.ArtifactID + "\n" + a.Version
	if detailed {
		label = a.GroupID + "\n" + label
		if a.Classifier != "" {
			label += "\n" + a.Classifier
		}
		label += "\n" + string(n.Scope.Normalize())
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Winner != nil:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=grey30")
	case n.Optional:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case n.Scope.Normalize() != artifact.Compile:
		attrs = append(attrs, "fillcolor=whitesmoke")
	}
	return attrs
}

// RenderSVG lays out DOT source with Graphviz and returns the SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg element with one
// scaled to its view box.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
