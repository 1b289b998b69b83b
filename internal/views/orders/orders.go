// Package orders is the orders page: the order list and the detail dialog
// for the selected order.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/modal"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/detail"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type API interface {
	Orders(ctx context.Context) ([]client.Order, error)
}

// LoadedMsg carries the list fetch result for mount Gen.
type LoadedMsg struct {
	Gen    int
	Orders []client.Order
	Err    error
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Close  key.Binding
	New    key.Binding
	Reload key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Open:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view order")),
		Close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new order")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// Model is the orders page.
type Model struct {
	ctx    context.Context
	api    API
	toasts *toast.Queue
	gen    int
	keys   KeyMap

	orders  []client.Order
	cursor  int
	dialog  modal.Modal[client.Order]
	loading bool
	spinner spinner.Model

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
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchOrders(m.ctx, m.api, m.gen))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing is true while the detail dialog is open so esc reaches it.
func (m Model) Capturing() bool { return m.dialog.IsOpen() }

func (m Model) Orders() []client.Order { return m.orders }

// Selected returns the order shown in the dialog, if open.
func (m Model) Selected() (client.Order, bool) { return m.dialog.Selected() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to load orders"))
			return m, nil
		}
		m.orders = msg.Orders
		if m.cursor >= len(m.orders) {
			m.cursor = max(len(m.orders)-1, 0)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.dialog.IsOpen() {
		if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Open) {
			m.dialog.Close()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.orders)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.orders) {
			m.dialog.Open(m.orders[m.cursor])
		}
	case key.Matches(msg, m.keys.New):
		return m, nav.Go(nav.OrderCreate)
	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, fetchOrders(m.ctx, m.api, m.gen))
	}
	return m, nil
}

func fetchOrders(ctx context.Context, api API, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := api.Orders(ctx)
		return LoadedMsg{Gen: gen, Orders: list, Err: err}
	}
}

func (m Model) View() string {
	if o, ok := m.dialog.Selected(); ok {
		panel := detail.New(&o).View()
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, max(m.height-6, lipgloss.Height(panel)), lipgloss.Center, lipgloss.Center, panel)
		}
		return panel
	}

	title := theme.StyleHeader.Render("Orders")
	if m.loading {
		title += "  " + m.spinner.View() + theme.StyleDimmed.Render(" loading")
	}
	help := theme.StyleDimmed.Render("enter: view  n: new order  r: reload  j/k: move")
	return lipgloss.JoinVertical(lipgloss.Left, title, help, "", m.renderTable())
}

func (m Model) renderTable() string {
	if len(m.orders) == 0 {
		if m.loading {
			return ""
		}
		return theme.StyleDimmed.Render("  No orders yet.")
	}

	var b strings.Builder
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %-7s %-22s %-17s %-7s %6s %14s", "ORDER", "CUSTOMER", "DATE", "PAYMENT", "ITEMS", "TOTAL")) + "\n")

	rows := max(m.height-12, 5)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(start+rows, len(m.orders))
	total := lipgloss.NewStyle().Foreground(theme.ColorSales)
	for i := start; i < end; i++ {
		o := m.orders[i]
		date := ""
		if !o.OrderDate.IsZero() {
			date = o.OrderDate.Local().Format("2006-01-02 15:04")
		}
		line := fmt.Sprintf("#%-6d %-22s %-17s %-7s %6d ",
			o.ID, theme.Truncate(o.CustomerLabel(), 22), date, client.PaymentLabel(o.PaymentMethod), len(o.Items))
		prefix := "  "
		if i == m.cursor {
			prefix = "▸ "
			line = theme.StyleSelected.Render(line)
		}
		b.WriteString(prefix + line + total.Render(fmt.Sprintf("%14s", theme.Money(o.TotalAmount.Float()))) + "\n")
	}
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %d orders", len(m.orders))))
	return b.String()
}
