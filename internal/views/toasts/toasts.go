// Package toasts renders the notification stack.
package toasts

import (
	"fmt"

	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/charmbracelet/lipgloss"
)

// MaxVisible caps how many notifications are drawn; the rest are counted.
const MaxVisible = 4

// View renders items in insertion order, newest at the bottom, each at most
// width columns wide. It returns "" when there is nothing to show.
func View(items []toast.Notification, width int) string {
	if len(items) == 0 {
		return ""
	}
	if width < 20 {
		width = 20
	}

	hidden := 0
	if len(items) > MaxVisible {
		hidden = len(items) - MaxVisible
		items = items[hidden:]
	}

	var boxes []string
	if hidden > 0 {
		boxes = append(boxes, theme.StyleDimmed.Render(lipgloss.NewStyle().Width(width).Align(lipgloss.Right).
			Render(plural(hidden))))
	}
	for _, n := range items {
		color := theme.SeverityColor(string(n.Severity))
		glyph := lipgloss.NewStyle().Foreground(color).Bold(true).Render(theme.SeverityGlyph(string(n.Severity)))
		boxes = append(boxes, lipgloss.NewStyle().
			Width(width).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Render(glyph+" "+n.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, boxes...)
}

func plural(n int) string {
	if n == 1 {
		return "+1 earlier notification"
	}
	return fmt.Sprintf("+%d earlier notifications", n)
}
