// Package products is the product catalogue page: the list with stock
// highlighting and the create form.
package products

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

// API is the subset of the client the page uses.
type API interface {
	Products(ctx context.Context) ([]client.Product, error)
	CreateProduct(ctx context.Context, in client.ProductInput) (*client.Product, error)
}

// LoadedMsg carries the result of the list fetch for mount Gen.
type LoadedMsg struct {
	Gen      int
	Products []client.Product
	Err      error
}

// CreatedMsg carries the result of a create call for mount Gen.
type CreatedMsg struct {
	Gen     int
	Product *client.Product
	Err     error
}

// KeyMap holds the page bindings.
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

// DefaultKeyMap returns the default product page bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		New:    key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new product")),
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close form")),
	}
}

// Form field order.
const (
	fieldName = iota
	fieldSKU
	fieldCategory
	fieldBuy
	fieldSell
	fieldStock
)

// Model is the products page.
type Model struct {
	ctx    context.Context
	api    API
	toasts *toast.Queue
	gen    int
	keys   KeyMap

	products []client.Product
	cursor   int

	loading    bool
	submitting bool
	editing    bool
	fields     form.Fields
	spinner    spinner.Model

	width  int
	height int
}

// New creates the page for mount gen. It starts in the loading state.
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
			form.Field{Label: "Name", Placeholder: "Notebook"},
			form.Field{Label: "SKU", Placeholder: "NB-001"},
			form.Field{Label: "Category", Placeholder: "Stationery"},
			form.Field{Label: "Buy price", Placeholder: "0.00", CharLimit: 12},
			form.Field{Label: "Sell price", Placeholder: "0.00", CharLimit: 12},
			form.Field{Label: "Stock", Placeholder: "0", CharLimit: 9},
		),
	}
}

// Init fetches the product list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetchProducts(m.ctx, m.api, m.gen))
}

// SetSize updates the available rendering area.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing reports whether keys are going to a text input.
func (m Model) Capturing() bool { return m.editing }

// Products returns the loaded list.
func (m Model) Products() []client.Product { return m.products }

// Draft returns the form contents.
func (m Model) Draft() forms.ProductDraft {
	return forms.ProductDraft{
		Name:      m.fields.Value(fieldName),
		SKU:       m.fields.Value(fieldSKU),
		Category:  m.fields.Value(fieldCategory),
		BuyPrice:  m.fields.Value(fieldBuy),
		SellPrice: m.fields.Value(fieldSell),
		Stock:     m.fields.Value(fieldStock),
	}
}

// Update handles messages for the page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to load products"))
			return m, nil
		}
		m.products = msg.Products
		if m.cursor >= len(m.products) {
			m.cursor = max(len(m.products)-1, 0)
		}
		return m, nil

	case CreatedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to add product"))
			return m, nil
		}
		m.toasts.Success("Product added")
		m.fields.Reset()
		m.loading = true
		return m, tea.Batch(m.fields.Focus(fieldName), m.spinner.Tick, fetchProducts(m.ctx, m.api, m.gen))

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
		if m.cursor < len(m.products)-1 {
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
		return m, tea.Batch(m.spinner.Tick, fetchProducts(m.ctx, m.api, m.gen))
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
		return m.submit()
	}
	return m, m.fields.Update(msg)
}

// submit validates locally and only then issues the create call.
func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	in, err := m.Draft().Payload()
	if err != nil {
		m.toasts.Error(client.UserMessage(err, "Failed to add product"))
		return m, nil
	}
	m.submitting = true
	return m, tea.Batch(m.spinner.Tick, createProduct(m.ctx, m.api, m.gen, in))
}

func fetchProducts(ctx context.Context, api API, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := api.Products(ctx)
		return LoadedMsg{Gen: gen, Products: list, Err: err}
	}
}

func createProduct(ctx context.Context, api API, gen int, in client.ProductInput) tea.Cmd {
	return func() tea.Msg {
		p, err := api.CreateProduct(ctx, in)
		return CreatedMsg{Gen: gen, Product: p, Err: err}
	}
}

var stylePanel = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(theme.ColorBorder).
	Padding(0, 1)

// View renders the form panel above the product table.
func (m Model) View() string {
	title := theme.StyleHeader.Render("Products")
	if m.loading {
		title += "  " + m.spinner.View() + theme.StyleDimmed.Render(" loading")
	}

	var formView string
	if m.editing {
		footer := "tab: next field  enter: save  esc: close"
		if m.submitting {
			footer = m.spinner.View() + " saving..."
		}
		formView = stylePanel.Render(lipgloss.JoinVertical(lipgloss.Left,
			theme.StyleHeader.Render("Add product"),
			m.fields.View(),
			"",
			theme.StyleDimmed.Render(footer),
		))
	} else {
		formView = theme.StyleDimmed.Render("n: add product  r: reload  j/k: move")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, "", formView, "", m.renderTable())
}

func (m Model) renderTable() string {
	if len(m.products) == 0 {
		if m.loading {
			return ""
		}
		return theme.StyleDimmed.Render("  No products yet.")
	}

	var b strings.Builder
	header := fmt.Sprintf("  %-5s %-24s %-12s %-14s %12s %12s %7s", "ID", "NAME", "SKU", "CATEGORY", "BUY", "SELL", "STOCK")
	b.WriteString(theme.StyleDimmed.Render(header) + "\n")

	start, end := m.visibleRange()
	for i := start; i < end; i++ {
		p := m.products[i]
		stock := lipgloss.NewStyle().
			Foreground(theme.StockColor(p.Stock, lowThreshold(p))).
			Render(fmt.Sprintf("%7d", p.Stock))
		row := fmt.Sprintf("%-5d %-24s %-12s %-14s %12s %12s ",
			p.ID, theme.Truncate(p.Name, 24), theme.Truncate(p.SKU, 12), theme.Truncate(p.Category, 14),
			theme.Money(p.BuyPrice.Float()), theme.Money(p.SellPrice.Float()))
		if i == m.cursor {
			b.WriteString(theme.StyleSelected.Render("▸ "+row) + stock)
		} else {
			b.WriteString("  " + row + stock)
		}
		if p.IsLowStock {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorStockLow).Render("  low"))
		}
		b.WriteByte('\n')
	}
	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("  %d products", len(m.products))))
	return b.String()
}

// lowThreshold prefers the server's flag so the color agrees with it.
func lowThreshold(p client.Product) int {
	if p.IsLowStock && p.Stock > p.LowStockThreshold {
		return p.Stock
	}
	return p.LowStockThreshold
}

func (m Model) visibleRange() (int, int) {
	rows := m.height - 16
	if m.editing {
		rows -= 8
	}
	if rows < 5 {
		rows = 5
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.products) {
		end = len(m.products)
	}
	return start, end
}
