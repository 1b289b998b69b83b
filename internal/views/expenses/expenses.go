// Package expenses is the expenses page: recorded expenses and the form to
// add one.
package expenses

import (
	"context"
	"fmt"
	"strings"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/forms"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/form"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type API interface {
	Expenses(ctx context.Context) ([]client.Expense, error)
	CreateExpense(ctx context.Context, in client.ExpenseInput) (*client.Expense, error)
}

// LoadedMsg carries the list fetch result for mount Gen.
type LoadedMsg struct {
	Gen      int
	Expenses []client.Expense
	Err      error
}

// CreatedMsg carries the create result for mount Gen.
type CreatedMsg struct {
	Gen     int
	Expense *client.Expense
	Err     error
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	New    key.Binding
	Reload key.Binding
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		New:    key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new expense")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close form")),
	}
}

const (
	fieldCategory = iota
	fieldAmount
	fieldDate
	fieldNote
)

// Model is the expenses page.
type Model struct {
	ctx    context.Context
	api    API
	toasts *toast.Queue
	gen    int
	keys   KeyMap

	expenses []client.Expense
	cursor   int

	loading    bool
	submitting bool
	editing    bool
	fields     form.Fields
	spinner    spinner.Model

	width  int
	height int
}

func New(ctx context.Context, api API, toasts *toast.Queue, gen int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:     ctx,
		api:     api,
		toasts:  toasts,
		gen:     gen,
		keys:    DefaultKeyMap(),
		loading: true,
		spinner: sp,
		fields: form.New(
			form.Field{Label: "Category", Placeholder: "Rent"},
			form.Field{Label: "Amount", Placeholder: "0.00", CharLimit: 12},
			form.Field{Label: "Date", Placeholder: "YYYY-MM-DD", CharLimit: 10},
			form.Field{Label: "Note", Placeholder: "optional", CharLimit: 200},
		),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchExpenses(m.ctx, m.api, m.gen))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keys are going to a text input.
func (m Model) Capturing() bool { return m.editing }

func (m Model) Expenses() []client.Expense { return m.expenses }

// Draft returns the form contents.
func (m Model) Draft() forms.ExpenseDraft {
	return forms.ExpenseDraft{
		Category: m.fields.Value(fieldCategory),
		Amount:   m.fields.Value(fieldAmount),
		Date:     m.fields.Value(fieldDate),
		Note:     m.fields.Value(fieldNote),
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to load expenses"))
			return m, nil
		}
		m.expenses = msg.Expenses
		if m.cursor >= len(m.expenses) {
			m.cursor = max(len(m.expenses)-1, 0)
		}
		return m, nil

	case CreatedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to add expense"))
			return m, nil
		}
		m.toasts.Success("Expense added")
		m.fields.Reset()
		m.loading = true
		return m, tea.Batch(m.fields.Focus(fieldCategory), m.spinner.Tick, fetchExpenses(m.ctx, m.api, m.gen))

	case spinner.TickMsg:
		if !m.loading && !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m.handleFormKey(msg)
		}
		return m.handleListKey(msg)
	}

	if m.editing {
		return m, m.fields.Update(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.expenses)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.New):
		m.editing = true
		return m, m.fields.Focus(m.fields.Focused())
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, fetchExpenses(m.ctx, m.api, m.gen))
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.fields.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		return m, m.fields.Next()
	case key.Matches(msg, m.keys.Prev):
		return m, m.fields.Prev()
	case key.Matches(msg, m.keys.Submit):
		if m.submitting {
			return m, nil
		}
		in, err := m.Draft().Payload()
		if err != nil {
			m.toasts.Error(client.UserMessage(err, "Failed to add expense"))
			return m, nil
		}
		m.submitting = true
		return m, tea.Batch(m.spinner.Tick, createExpense(m.ctx, m.api, m.gen, in))
	}
	return m, m.fields.Update(msg)
}

func fetchExpenses(ctx context.Context, api API, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := api.Expenses(ctx)
		return LoadedMsg{Gen: gen, Expenses: list, Err: err}
	}
}

func createExpense(ctx context.Context, api API, gen int, in client.ExpenseInput) tea.Cmd {
	return func() tea.Msg {
		e, err := api.CreateExpense(ctx, in)
		return CreatedMsg{Gen: gen, Expense: e, Err: err}
	}
}

var stylePanel = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorBorder).
	Padding(0, 1)

func (m Model) View() string {
	title := theme.StyleHeader.Render("Expenses")
	if m.loading {
		title += "  " + m.spinner.View() + theme.StyleDimmed.Render(" loading")
	}

	formView := theme.StyleDimmed.Render("n: add expense  r: reload  j/k: move")
	if m.editing {
		footer := "tab: next field  enter: save  esc: close"
		if m.submitting {
			footer = m.spinner.View() + " saving..."
		}
		formView = stylePanel.Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleHeader.Render("Add expense"),
			m.fields.View(),
			"",
			theme.StyleDimmed.Render(footer),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", formView, "", m.renderTable())
}

func (m Model) renderTable() string {
	if len(m.expenses) == 0 {
		if m.loading {
			return ""
		}
		return theme.StyleDimmed.Render("  No expenses recorded.")
	}

	var b strings.Builder
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %-12s %-18s %14s  %s", "DATE", "CATEGORY", "AMOUNT", "NOTE")) + "\n")

	amount := lipgloss.NewStyle().Foreground(theme.ColorExpense)
	rows := max(m.height-14, 5)
	if m.editing {
		rows = max(rows-6, 5)
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.expenses))

	var total float64
	for _, e := range m.expenses {
		total += e.Amount.Float()
	}
	for i := start; i < end; i++ {
		e := m.expenses[i]
		prefix := "  "
		line := fmt.Sprintf("%-12s %-18s ", e.Date, theme.Truncate(e.Category, 18))
		if i == m.cursor {
			prefix = "▸ "
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(prefix + line + amount.Render(fmt.Sprintf("%14s", theme.Money(e.Amount.Float()))) +
			"  " + theme.StyleDimmed.Render(theme.Truncate(e.Note, 40)) + "\n")
	}
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %d expenses, total %s", len(m.expenses), theme.Money(total))))
	return b.String()
}
