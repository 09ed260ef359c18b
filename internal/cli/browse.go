package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/teletha/bee-sub002/pkg/artifact"
	"github.com/teletha/bee-sub002/pkg/resolve"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// libraryBrowser is the bubbletea model behind "resolve --browse": a
// scrollable library table with an incremental filter.
type libraryBrowser struct {
	title   string
	libs    []resolve.Library
	visible []resolve.Library

	cursor, offset, height int
	filter                 string
	filtering              bool
	detail                 bool
}

func newLibraryBrowser(name string, scope artifact.Scope, libs []resolve.Library) libraryBrowser {
	return libraryBrowser{
		title:   fmt.Sprintf("%s libraries of %s", scope, name),
		libs:    libs,
		visible: libs,
		height:  15,
	}
}

func (m libraryBrowser) Init() tea.Cmd {
	return nil
}

func (m libraryBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg), nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.filter == "" && !m.detail {
				return m, tea.Quit
			}
			m.detail = false
			m.setFilter("")
		case "/":
			m.filtering = true
			m.detail = false
		case "enter":
			m.detail = len(m.visible) > 0 && !m.detail
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
		m.move(0)
	}
	return m, nil
}

func (m libraryBrowser) updateFilter(msg tea.KeyMsg) libraryBrowser {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
	case tea.KeyEsc:
		m.filtering = false
		m.setFilter("")
	case tea.KeyBackspace:
		if n := len(m.filter); n > 0 {
			m.setFilter(m.filter[:n-1])
		}
	case tea.KeyRunes:
		m.setFilter(m.filter + string(msg.Runes))
	}
	return m
}

// setFilter keeps the libraries whose coordinate contains f.
func (m *libraryBrowser) setFilter(f string) {
	m.filter = f
	m.cursor, m.offset = 0, 0
	if f == "" {
		m.visible = m.libs
		return
	}
	m.visible = nil
	needle := strings.ToLower(f)
	for _, l := range m.libs {
		if strings.Contains(strings.ToLower(l.Coordinate()), needle) {
			m.visible = append(m.visible, l)
		}
	}
}

func (m *libraryBrowser) move(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), max(len(m.visible)-1, 0))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// selected returns the library under the cursor.
func (m libraryBrowser) selected() (resolve.Library, bool) {
	if m.cursor >= len(m.visible) {
		return resolve.Library{}, false
	}
	return m.visible[m.cursor], true
}

func (m libraryBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")
	switch {
	case m.filtering:
		b.WriteString("/" + m.filter + StyleDim.Render("█"))
	case m.filter != "":
		b.WriteString(listDimStyle.Render(fmt.Sprintf("filter: %s  esc clear  / edit  q quit", m.filter)))
	default:
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  / filter  q quit"))
	}
	b.WriteString("\n\n")

	if l, ok := m.selected(); ok && m.detail {
		b.WriteString(libraryDetail(l))
		return b.String()
	}
	if len(m.visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching libraries"))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.visible))
	b.WriteString(libraryTable(m.visible[m.offset:end], m.cursor-m.offset).Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.visible))))
	if len(m.visible) != len(m.libs) {
		b.WriteString(listDimStyle.Render(fmt.Sprintf(" of %d", len(m.libs))))
	}
	return b.String()
}

func libraryDetail(l resolve.Library) string {
	key := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	var b strings.Builder
	line := func(k, v string) {
		if v != "" {
			b.WriteString(key.Render(k) + " " + StyleValue.Render(v) + "\n")
		}
	}
	line("coordinate", l.Coordinate())
	line("scope", string(l.Scope))
	line("classifier", l.Classifier)
	line("extension", l.Extension)
	line("repository", l.Repository)
	line("path", l.Artifact().Path())
	line("local", l.LocalPath)
	if l.Optional {
		line("optional", "yes")
	}
	b.WriteString("\n" + listDimStyle.Render("⏎ back"))
	return b.String()
}
