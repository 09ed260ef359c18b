package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/collect"
)

var (
	styleRoot     = lipgloss.NewStyle().Bold(true)
	styleScope    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleOptional = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleLoser    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	styleNote     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleBranch   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TreeOptions configures [Tree].
type TreeOptions struct {
	// MaxDepth limits the printed levels below the root; 0 prints all.
	MaxDepth int
	// Plain disables styling.
	Plain bool
}

// Tree renders root and its descendants as an indented tree.
func Tree(root *collect.Node, opts TreeOptions) string {
	if root == nil {
		return ""
	}
	t := branch(rootLabel(root, opts.Plain), opts.Plain)
	addChildren(t, root, 1, opts, map[*collect.Node]bool{root: true})
	return t.String()
}

func addChildren(t *tree.Tree, n *collect.Node, depth int, opts TreeOptions, onPath map[*collect.Node]bool) {
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return
	}
	for _, c := range n.Children() {
		label := nodeLabel(c, opts.Plain)
		if onPath[c] {
			t.Child(label + note(" (cycle)", opts.Plain))
			continue
		}
		if c.Winner != nil || len(c.Children()) == 0 || (opts.MaxDepth > 0 && depth == opts.MaxDepth) {
			t.Child(label)
			continue
		}
		sub := branch(label, opts.Plain)
		onPath[c] = true
		addChildren(sub, c, depth+1, opts, onPath)
		delete(onPath, c)
		t.Child(sub)
	}
}

func branch(label string, plain bool) *tree.Tree {
	t := tree.Root(label)
	if !plain {
		t = t.EnumeratorStyle(styleBranch)
	}
	return t
}

func rootLabel(n *collect.Node, plain bool) string {
	s := n.String()
	if plain {
		return s
	}
	return styleRoot.Render(s)
}

// Label describes a node on one line: coordinate, effective scope when it
// is not compile, optionality, relocation and conflict outcome.
func Label(n *collect.Node) string {
	return nodeLabel(n, true)
}

func nodeLabel(n *collect.Node, plain bool) string {
	var b strings.Builder
	if n.Winner != nil && !plain {
		b.WriteString(styleLoser.Render(n.Artifact.String()))
	} else {
		b.WriteString(n.Artifact.String())
	}
	if s := n.Scope.Normalize(); s != artifact.Compile {
		b.WriteString(style(styleScope, " ["+string(s)+"]", plain))
	}
	if n.Optional {
		b.WriteString(style(styleOptional, " (optional)", plain))
	}
	if len(n.Relocations) > 0 {
		b.WriteString(note(fmt.Sprintf(" (relocated from %s)", n.Relocations[0]), plain))
	}
	if n.Winner != nil {
		b.WriteString(note(" (omitted for conflict with "+n.Winner.Artifact.Version+")", plain))
	}
	return b.String()
}

func note(s string, plain bool) string {
	return style(styleNote, s, plain)
}

func style(st lipgloss.Style, s string, plain bool) string {
	if plain {
		return s
	}
	return st.Render(s)
}
