// Package ordercreate is the order entry page. It loads the product and
// customer lists, edits a forms.OrderDraft and submits it once the draft
// passes validation, including the stock check against the loaded products.
package ordercreate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/forms"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type API interface {
	Products(ctx context.Context) ([]client.Product, error)
	Customers(ctx context.Context) ([]client.Customer, error)
	CreateOrder(ctx context.Context, in client.OrderInput) (*client.Order, error)
}

// ProductsLoadedMsg carries the product fetch for mount Gen.
type ProductsLoadedMsg struct {
	Gen      int
	Products []client.Product
	Err      error
}

// CustomersLoadedMsg carries the customer fetch for mount Gen.
type CustomersLoadedMsg struct {
	Gen       int
	Customers []client.Customer
	Err       error
}

// CreatedMsg carries the create result for mount Gen.
type CreatedMsg struct {
	Gen   int
	Order *client.Order
	Err   error
}

type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	AddItem key.Binding
	DelItem key.Binding
	Submit  key.Binding
	Release key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "prev row")),
		Down:    key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next row")),
		Left:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev choice")),
		Right:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next choice")),
		AddItem: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add item")),
		DelItem: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove item")),
		Submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "create order")),
		Release: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave field")),
	}
}

// Fixed rows before the item lines.
const (
	rowCustomer = iota
	rowDate
	rowPayment
	rowFirstItem
)

// Model is the order creation page.
type Model struct {
	ctx    context.Context
	api    API
	toasts *toast.Queue
	gen    int
	keys   KeyMap
	now    func() time.Time

	products  []client.Product
	customers []client.Customer

	draft       forms.OrderDraft
	customerIdx int // 0 is guest, otherwise customers[customerIdx-1]
	date        textinput.Model
	qty         []textinput.Model
	row         int

	loadingProducts  bool
	loadingCustomers bool
	submitting       bool
	spinner          spinner.Model

	width  int
	height int
}

func New(ctx context.Context, api API, toasts *toast.Queue, gen int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	m := Model{
		ctx:              ctx,
		api:              api,
		toasts:           toasts,
		gen:              gen,
		keys:             DefaultKeyMap(),
		now:              time.Now,
		loadingProducts:  true,
		loadingCustomers: true,
		spinner:          sp,
	}
	m.date = textinput.New()
	m.date.Prompt = ""
	m.date.CharLimit = len(forms.OrderDateLayout)
	m.date.Placeholder = "YYYY-MM-DD HH:MM"
	m.resetDraft()
	return m
}

// WithClock replaces the clock used for the default order date.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	m.resetDraft()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		fetchProducts(m.ctx, m.api, m.gen),
		fetchCustomers(m.ctx, m.api, m.gen),
	)
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Capturing is true while a text field has focus.
func (m Model) Capturing() bool {
	return m.row == rowDate || m.row >= rowFirstItem
}

// Draft returns the current form state.
func (m Model) Draft() forms.OrderDraft {
	d := m.draft
	d.Items = append([]forms.ItemDraft(nil), m.draft.Items...)
	return d
}

func (m Model) Products() []client.Product { return m.products }

func (m Model) Customers() []client.Customer { return m.customers }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProductsLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loadingProducts = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to load products"))
			return m, nil
		}
		m.products = msg.Products
		return m, nil

	case CustomersLoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loadingCustomers = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Failed to load customers"))
			return m, nil
		}
		m.customers = msg.Customers
		if m.customerIdx > len(m.customers) {
			m.customerIdx = 0
			m.draft.CustomerID = ""
		}
		return m, nil

	case CreatedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.toasts.Error(client.UserMessage(msg.Err, "Order creation failed"))
			return m, nil
		}
		m.toasts.Success("Order created")
		m.resetDraft()
		return m, nav.Go(nav.Orders)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.updateInput(msg)
}

func (m Model) busy() bool {
	return m.loadingProducts || m.loadingCustomers || m.submitting
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Release):
		return m, m.focusRow(rowCustomer)
	case key.Matches(msg, m.keys.Up):
		return m, m.focusRow(m.row - 1)
	case key.Matches(msg, m.keys.Down):
		return m, m.focusRow(m.row + 1)
	case key.Matches(msg, m.keys.AddItem):
		m.draft.AddItem()
		m.qty = append(m.qty, newQtyInput("1"))
		return m, m.focusRow(rowFirstItem + len(m.qty) - 1)
	case key.Matches(msg, m.keys.DelItem):
		if m.row < rowFirstItem {
			return m, nil
		}
		i := m.row - rowFirstItem
		m.draft.RemoveItem(i)
		m.qty = append(m.qty[:i:i], m.qty[i+1:]...)
		return m, m.focusRow(min(m.row, m.lastRow()))
	case key.Matches(msg, m.keys.Left):
		if m.cycle(-1) {
			return m, nil
		}
	case key.Matches(msg, m.keys.Right):
		if m.cycle(1) {
			return m, nil
		}
	}
	return m.updateInput(msg)
}

// cycle steps the choice on the focused row. It reports false on rows
// without choices so the key can go to the text input instead.
func (m *Model) cycle(step int) bool {
	switch {
	case m.row == rowCustomer:
		m.customerIdx = wrap(m.customerIdx+step, len(m.customers)+1)
		m.draft.CustomerID = ""
		if m.customerIdx > 0 {
			m.draft.CustomerID = strconv.Itoa(m.customers[m.customerIdx-1].ID)
		}
		return true
	case m.row == rowPayment:
		m.draft.Payment = client.StepPaymentMethod(m.draft.Payment, step)
		return true
	case m.row >= rowFirstItem:
		if len(m.products) == 0 {
			return true
		}
		i := m.row - rowFirstItem
		cur := m.productIndex(m.draft.Items[i].ProductID)
		next := 0
		if cur >= 0 {
			next = wrap(cur+step, len(m.products))
		} else if step < 0 {
			next = len(m.products) - 1
		}
		m.draft.Items[i].ProductID = strconv.Itoa(m.products[next].ID)
		return true
	}
	return false
}

// updateInput routes msg to the focused text input and mirrors its value
// into the draft.
func (m Model) updateInput(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.row == rowDate:
		m.date, cmd = m.date.Update(msg)
		m.draft.OrderDate = m.date.Value()
	case m.row >= rowFirstItem:
		i := m.row - rowFirstItem
		m.qty[i], cmd = m.qty[i].Update(msg)
		m.draft.Items[i].Quantity = m.qty[i].Value()
	}
	return m, cmd
}

func (m *Model) focusRow(row int) tea.Cmd {
	row = max(0, min(row, m.lastRow()))
	m.row = row
	m.date.Blur()
	for i := range m.qty {
		m.qty[i].Blur()
	}
	switch {
	case row == rowDate:
		return m.date.Focus()
	case row >= rowFirstItem:
		return m.qty[row-rowFirstItem].Focus()
	}
	return nil
}

func (m Model) lastRow() int {
	return rowFirstItem + len(m.qty) - 1
}

func (m *Model) resetDraft() {
	m.draft.Reset(m.now())
	m.customerIdx = 0
	m.date.SetValue(m.draft.OrderDate)
	m.qty = nil
	for _, it := range m.draft.Items {
		m.qty = append(m.qty, newQtyInput(it.Quantity))
	}
	m.focusRow(rowCustomer)
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	in, err := m.draft.Payload(m.products, time.Local)
	if err != nil {
		m.toasts.Error(client.UserMessage(err, "Order creation failed"))
		return m, nil
	}
	m.submitting = true
	return m, tea.Batch(m.spinner.Tick, createOrder(m.ctx, m.api, m.gen, in))
}

func (m Model) productIndex(id string) int {
	for i, p := range m.products {
		if strconv.Itoa(p.ID) == id {
			return i
		}
	}
	return -1
}

func newQtyInput(v string) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 6
	in.Width = 6
	in.SetValue(v)
	return in
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func fetchProducts(ctx context.Context, api API, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := api.Products(ctx)
		return ProductsLoadedMsg{Gen: gen, Products: list, Err: err}
	}
}

func fetchCustomers(ctx context.Context, api API, gen int) tea.Cmd {
	return func() tea.Msg {
		list, err := api.Customers(ctx)
		return CustomersLoadedMsg{Gen: gen, Customers: list, Err: err}
	}
}

func createOrder(ctx context.Context, api API, gen int, in client.OrderInput) tea.Cmd {
	return func() tea.Msg {
		o, err := api.CreateOrder(ctx, in)
		return CreatedMsg{Gen: gen, Order: o, Err: err}
	}
}

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleFocus  = lipgloss.NewStyle().Foreground(theme.ColorAccent).Bold(true)
	styleChoice = lipgloss.NewStyle().Foreground(theme.ColorBright)
)

func (m Model) View() string {
	title := theme.StyleHeader.Render("Create Order")
	if m.busy() {
		label := " loading"
		if m.submitting {
			label = " creating"
		}
		title += "  " + m.spinner.View() + theme.StyleDimmed.Render(label)
	}

	var b strings.Builder
	m.writeRow(&b, rowCustomer, "Customer", choice(m.customerLabel()))
	m.writeRow(&b, rowDate, "Date", m.date.View())
	m.writeRow(&b, rowPayment, "Payment", choice(client.PaymentLabel(m.draft.Payment)))
	b.WriteString("\n" + theme.StyleDimmed.Render("Items") + "\n")

	var estimate float64
	for i, it := range m.draft.Items {
		product := theme.StyleDimmed.Render("select product")
		line := ""
		if idx := m.productIndex(it.ProductID); idx >= 0 {
			p := m.products[idx]
			stock := lipgloss.NewStyle().Foreground(theme.StockColor(p.Stock, p.LowStockThreshold)).
				Render(fmt.Sprintf("stock %d", p.Stock))
			product = styleChoice.Render(theme.Truncate(p.Name, 22)) + " " + stock
			if q, err := strconv.Atoi(strings.TrimSpace(it.Quantity)); err == nil && q > 0 {
				sub := float64(q) * p.SellPrice.Float()
				estimate += sub
				line = theme.StyleDimmed.Render(" = " + theme.Money(sub))
			}
		}
		value := fmt.Sprintf("‹ %s ›  qty %s%s", product, m.qty[i].View(), line)
		m.writeRow(&b, rowFirstItem+i, fmt.Sprintf("#%d", i+1), value)
	}
	b.WriteString("\n" + theme.StyleLabel.Render("Estimate") + theme.Money(estimate))

	help := theme.StyleDimmed.Render("↑/↓: row  ←/→: choose  ctrl+n: add item  ctrl+x: remove item  enter: create  esc: leave field")
	return lipgloss.JoinVertical(lipgloss.Left, title, "", stylePanel.Render(b.String()), help)
}

func (m Model) writeRow(b *strings.Builder, row int, label, value string) {
	marker := "  "
	l := theme.StyleLabel.Render(label)
	if m.row == row {
		marker = styleFocus.Render("▸ ")
		l = styleFocus.Width(14).Render(label)
	}
	b.WriteString(marker + l + value + "\n")
}

func (m Model) customerLabel() string {
	if m.customerIdx == 0 || m.customerIdx > len(m.customers) {
		return "Guest"
	}
	c := m.customers[m.customerIdx-1]
	if c.Phone != "" {
		return c.Name + " (" + c.Phone + ")"
	}
	return c.Name
}

func choice(s string) string {
	return "‹ " + styleChoice.Render(s) + " ›"
}
