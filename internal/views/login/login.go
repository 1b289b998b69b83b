// Package login is the sign-in page.
package login

import (
	"context"
	"strings"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/form"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
)

// FailedMessage is shown for any rejected sign-in.
const FailedMessage = "Login failed. Check credentials."

type API interface {
	Login(ctx context.Context, username, password string) (client.TokenPair, error)
}

// Sessions stores the tokens of a successful sign-in.
type Sessions interface {
	Login(access, refresh string) error
}

// ResultMsg carries the token exchange result for mount Gen.
type ResultMsg struct {
	Gen    int
	Tokens client.TokenPair
	Err    error
}

type KeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in")),
	}
}

const (
	fieldUsername = iota
	fieldPassword
)

// Model is the login page.
type Model struct {
	ctx      context.Context
	api      API
	sessions Sessions
	toasts   *toast.Queue
	gen      int
	keys     KeyMap

	fields     form.Fields
	submitting bool
	errText    string
	spinner    spinner.Model
	banner     string

	width  int
	height int
}

func New(ctx context.Context, api API, sessions Sessions, toasts *toast.Queue, gen int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		ctx:      ctx,
		api:      api,
		sessions: sessions,
		toasts:   toasts,
		gen:      gen,
		keys:     DefaultKeyMap(),
		spinner:  sp,
		banner:   figure.NewFigure("Dashboard", "small", true).String(),
		fields: form.New(
			form.Field{Label: "Username", CharLimit: 150},
			form.Field{Label: "Password", Password: true, CharLimit: 128},
		),
	}
	return m
}

// Init focuses the username field.
func (m Model) Init() tea.Cmd {
	return m.fields.Focus(fieldUsername)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing is always true: every key is typed into a field.
func (m Model) Capturing() bool { return true }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			return m.fail(), nil
		}
		if err := m.sessions.Login(msg.Tokens.Access, msg.Tokens.Refresh); err != nil {
			return m.fail(), nil
		}
		m.fields.Reset()
		m.errText = ""
		return m, func() tea.Msg { return nav.LoggedInMsg{} }

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Next):
			return m, m.fields.Next()
		case key.Matches(msg, m.keys.Prev):
			return m, m.fields.Prev()
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}
	}
	return m, m.fields.Update(msg)
}

func (m Model) fail() Model {
	m.errText = FailedMessage
	m.toasts.Error(FailedMessage)
	m.fields.SetValue(fieldPassword, "")
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	username := strings.TrimSpace(m.fields.Value(fieldUsername))
	password := m.fields.Value(fieldPassword)
	if username == "" || password == "" {
		m.errText = "Username and password are required"
		m.toasts.Error(m.errText)
		return m, nil
	}
	m.submitting = true
	m.errText = ""
	return m, tea.Batch(m.spinner.Tick, exchange(m.ctx, m.api, m.gen, username, password))
}

func exchange(ctx context.Context, api API, gen int, username, password string) tea.Cmd {
	return func() tea.Msg {
		pair, err := api.Login(ctx, username, password)
		return ResultMsg{Gen: gen, Tokens: pair, Err: err}
	}
}

var stylePanel = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorAccent).
	Padding(1, 3)

func (m Model) View() string {
	status := theme.StyleDimmed.Render("enter: sign in  tab: next field  ctrl+c: quit")
	if m.submitting {
		status = m.spinner.View() + theme.StyleDimmed.Render(" signing in...")
	} else if m.errText != "" {
		status = theme.StyleError.Render(m.errText)
	}

	panel := stylePanel.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.StyleHeader.Render("Sign in"),
		"",
		m.fields.View(),
		"",
		status,
	))
	banner := lipgloss.NewStyle().Foreground(theme.ColorAccent).Render(strings.TrimRight(m.banner, "\n"))
	content := lipgloss.JoinVertical(lipgloss.Center, banner, "", panel)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height-4, lipgloss.Center, lipgloss.Center, content)
}
