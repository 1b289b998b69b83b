package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the header bar state.
type Model struct {
	Page          nav.Page
	Authenticated bool
	User          string
	ExpiresAt     time.Time
	Server        string
	Width         int
	Now           func() time.Time
}

// New creates a header bar for the given API host.
func New(server string) Model {
	return Model{Server: server, Now: time.Now}
}

var (
	styleTab       = lipgloss.NewStyle().Foreground(theme.ColorDefault).Padding(0, 1)
	styleActiveTab = lipgloss.NewStyle().Foreground(theme.ColorBright).Background(theme.ColorAccent).Bold(true).Padding(0, 1)
)

// View renders the header bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var tabs []string
	if m.Authenticated {
		for i, p := range nav.Tabs {
			label := fmt.Sprintf("%d %s", i+1, p)
			if p == m.Page {
				tabs = append(tabs, styleActiveTab.Render(label))
			} else {
				tabs = append(tabs, styleTab.Render(label))
			}
		}
	} else {
		tabs = append(tabs, styleActiveTab.Render(nav.Login.String()))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := strings.Join(tabs, "") + sep + m.userView()
	if m.Server != "" {
		content += sep + theme.StyleDimmed.Render(m.Server)
	}

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}

func (m Model) userView() string {
	if !m.Authenticated {
		return lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ signed out")
	}
	user := m.User
	if user == "" {
		user = "signed in"
	}
	s := lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● " + user)
	if m.ExpiresAt.IsZero() {
		return s
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	left := m.ExpiresAt.Sub(now())
	switch {
	case left <= 0:
		s += " " + lipgloss.NewStyle().Foreground(theme.ColorWarning).Render("(token expired)")
	case left < 5*time.Minute:
		s += " " + lipgloss.NewStyle().Foreground(theme.ColorWarning).Render(fmt.Sprintf("(expires in %dm)", int(left.Minutes())+1))
	}
	return s
}
