// Package help renders the key reference overlay. The reference is built as
// markdown from the live key bindings and rendered with glamour.
package help

import (
	"fmt"
	"strings"

	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Section is one titled group of bindings.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Markdown builds the key reference document.
func Markdown(sections []Section) string {
	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, s := range sections {
		var rows []string
		for _, kb := range s.Bindings {
			h := kb.Help()
			if h.Key == "" || h.Desc == "" {
				continue
			}
			rows = append(rows, fmt.Sprintf("| `%s` | %s |", h.Key, h.Desc))
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", s.Title)
		b.WriteString(strings.Join(rows, "\n"))
		b.WriteByte('\n')
	}
	return b.String()
}

// Model caches the rendered overlay for a width.
type Model struct {
	// Style is a glamour standard style name.
	Style string

	sections []Section
	width    int
	rendered string
}

// New creates the overlay for sections.
func New(sections ...Section) Model {
	return Model{Style: "dark", sections: sections}
}

// SetWidth re-renders when the width changes.
func (m *Model) SetWidth(width int) {
	if width == m.width && m.rendered != "" {
		return
	}
	m.width = width
	m.rendered = m.render()
}

func (m Model) render() string {
	md := Markdown(m.sections)
	wrap := m.width - 8
	if wrap < 40 {
		wrap = 40
	}
	style := m.Style
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// View renders the overlay panel.
func (m Model) View() string {
	body := m.rendered
	if body == "" {
		body = m.render()
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Padding(0, 1).
		Render(body + "\n" + theme.StyleDimmed.Render("?/esc: close"))
}
