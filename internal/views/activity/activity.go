// Package activity provides a scrollable overlay of recent log lines.
package activity

import (
	"fmt"
	"strings"

	"github.com/biz-dashboard/tui/internal/logging"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/charmbracelet/lipgloss"
)

// Source supplies the buffered log entries, oldest first.
type Source interface {
	Entries() []logging.Entry
}

// Model holds the activity overlay state.
type Model struct {
	source  Source
	Entries []logging.Entry
	Offset  int // scroll offset (from bottom)
}

// New creates an overlay reading from src.
func New(src Source) Model {
	return Model{source: src}
}

// Refresh pulls the latest entries. New entries reset the scroll to the bottom.
func (m *Model) Refresh() {
	if m.source == nil {
		return
	}
	next := m.source.Entries()
	if len(next) > 0 && (len(m.Entries) == 0 || next[len(next)-1] != m.Entries[len(m.Entries)-1]) {
		m.Offset = 0
	}
	m.Entries = next
	m.clamp()
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset += n
	m.clamp()
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

func (m *Model) clamp() {
	max := len(m.Entries) - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

func panelStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the log as an overlay panel.
func (m Model) View(width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visibleLines := height - 6
	if visibleLines < 3 {
		visibleLines = 3
	}

	title := theme.StyleHeader.Render(" ACTIVITY ")
	help := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.Entries)))

	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  Nothing logged yet.")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", help)
		return panelStyle(innerW).Render(content)
	}

	end := len(m.Entries) - m.Offset
	start := end - visibleLines
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}

	var lines []string
	for i := start; i < end; i++ {
		e := m.Entries[i]
		ts := theme.StyleDimmed.Render(e.Time.Local().Format("15:04:05.000"))
		level := lipgloss.NewStyle().Foreground(levelColor(e.Level)).Width(5).Render(shortLevel(e.Level))
		msg := e.Message
		if e.Fields != "" {
			msg += " " + theme.StyleDimmed.Render(e.Fields)
		}
		if lipgloss.Width(msg) > innerW-20 && innerW > 23 {
			msg = theme.Truncate(e.Message+" "+e.Fields, innerW-20)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", ts, level, msg))
	}

	body := strings.Join(lines, "\n")
	scrollIndicator := ""
	if m.Offset > 0 {
		scrollIndicator = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, scrollIndicator, help)
	return panelStyle(innerW).Render(content)
}

func shortLevel(level string) string {
	switch level {
	case "debug":
		return "dbg"
	case "info":
		return "inf"
	case "warn":
		return "wrn"
	case "error", "fatal", "panic":
		return "err"
	}
	return level
}

func levelColor(level string) lipgloss.Color {
	switch level {
	case "error", "fatal", "panic":
		return theme.ColorError
	case "warn":
		return theme.ColorWarning
	case "info":
		return theme.ColorInfo
	default:
		return theme.ColorDimmed
	}
}
