// Package analytics is the dashboard landing page: summary cards, monthly
// sales, top products and this month's expense breakdown.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

// FailedMessage replaces the page when any of the requests fails.
const FailedMessage = "Failed to load analytics."

const (
	fps      = 60
	barWidth = 30
)

type API interface {
	SalesSummary(ctx context.Context) (*client.SalesSummary, error)
	MonthlySales(ctx context.Context) ([]client.MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]client.TopProduct, error)
	ExpensesSummary(ctx context.Context, start, end string) ([]client.ExpenseCategoryTotal, error)
}

// Data is everything the page shows.
type Data struct {
	Summary  client.SalesSummary
	Monthly  []client.MonthlySales
	Top      []client.TopProduct
	Expenses []client.ExpenseCategoryTotal
}

// LoadedMsg carries the combined fetch for mount Gen.
type LoadedMsg struct {
	Gen  int
	Data Data
	Err  error
}

// FrameMsg advances the bar animation for mount Gen.
type FrameMsg struct {
	Gen int
}

type KeyMap struct {
	Reload key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// Model is the analytics page.
type Model struct {
	ctx    context.Context
	api    API
	toasts *toast.Queue
	gen    int
	limit  int
	keys   KeyMap
	now    func() time.Time

	data    Data
	loaded  bool
	loading bool
	failed  bool
	spinner spinner.Model

	// Bars grow from zero to their value on each load.
	spring    harmonica.Spring
	progress  float64
	velocity  float64
	animating bool

	width  int
	height int
}

// New creates the page. limit is the number of top products requested.
func New(ctx context.Context, api API, toasts *toast.Queue, gen, limit int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	if limit <= 0 {
		limit = 5
	}
	return Model{
		ctx:     ctx,
		api:     api,
		toasts:  toasts,
		gen:     gen,
		limit:   limit,
		keys:    DefaultKeyMap(),
		now:     time.Now,
		loading: true,
		spinner: sp,
		spring:  harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.8),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, fetch(m.ctx, m.api, m.gen, m.limit, m.now()))
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) Capturing() bool { return false }

func (m Model) Data() Data { return m.data }

// Failed reports whether the last load failed.
func (m Model) Failed() bool { return m.failed }

// Progress is the animation position in [0, 1].
func (m Model) Progress() float64 { return m.progress }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.failed = true
			m.toasts.Error(FailedMessage)
			return m, nil
		}
		m.failed = false
		m.loaded = true
		m.data = msg.Data
		m.progress, m.velocity = 0, 0
		m.animating = true
		return m, frame(m.gen)

	case FrameMsg:
		if msg.Gen != m.gen || !m.animating {
			return m, nil
		}
		m.progress, m.velocity = m.spring.Update(m.progress, m.velocity, 1)
		if math.Abs(1-m.progress) < 0.001 && math.Abs(m.velocity) < 0.001 {
			m.progress, m.velocity = 1, 0
			m.animating = false
			return m, nil
		}
		return m, frame(m.gen)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Reload) && !m.loading {
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, fetch(m.ctx, m.api, m.gen, m.limit, m.now()))
		}
	}
	return m, nil
}

func frame(gen int) tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{Gen: gen} })
}

// fetch issues the four requests concurrently. The first failure cancels the
// others and fails the whole load.
func fetch(ctx context.Context, api API, gen, limit int, now time.Time) tea.Cmd {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
	end := now.Format("2006-01-02")
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(ctx)
		var d Data
		g.Go(func() error {
			s, err := api.SalesSummary(ctx)
			if err != nil {
				return fmt.Errorf("sales summary: %w", err)
			}
			if s != nil {
				d.Summary = *s
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if d.Monthly, err = api.MonthlySales(ctx); err != nil {
				return fmt.Errorf("monthly sales: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if d.Top, err = api.TopProducts(ctx, limit); err != nil {
				return fmt.Errorf("top products: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			if d.Expenses, err = api.ExpensesSummary(ctx, start, end); err != nil {
				return fmt.Errorf("expenses summary: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return LoadedMsg{Gen: gen, Err: err}
		}
		return LoadedMsg{Gen: gen, Data: d}
	}
}

var (
	styleCard = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1).
			Width(20)

	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleCardValue = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBright)
)

func (m Model) View() string {
	title := theme.StyleHeader.Render("Dashboard")
	if m.loading {
		title += "  " + m.spinner.View() + theme.StyleDimmed.Render(" loading")
	}
	if m.failed {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			theme.StyleError.Render(FailedMessage),
			theme.StyleDimmed.Render("r: retry"))
	}
	if !m.loaded {
		return title
	}

	s := m.data.Summary
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Today's sales", theme.Money(s.TodaySales.Float()), theme.ColorSales),
		card("This month", theme.Money(s.MonthSales.Float()), theme.ColorSales),
		card("Revenue", theme.Money(s.TotalRevenue.Float()), theme.ColorBright),
		card("Expenses", theme.Money(s.TotalExpense.Float()), theme.ColorExpense),
		card("Profit", theme.Money(s.TotalProfit.Float()), theme.ProfitColor(s.TotalProfit.Float())),
	)
	counts := theme.StyleDimmed.Render(fmt.Sprintf("%d orders  %d customers", s.TotalOrders, s.TotalCustomers))

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		stylePanel.Render(m.renderMonthly()),
		" ",
		stylePanel.Render(m.renderTop()),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		title, "", cards, counts, "", charts, stylePanel.Render(m.renderExpenses()),
		theme.StyleDimmed.Render("r: reload"))
}

func card(label, value string, color lipgloss.Color) string {
	return styleCard.Render(theme.StyleDimmed.Render(label) + "\n" + styleCardValue.Foreground(color).Render(value))
}

func (m Model) renderMonthly() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Monthly sales") + "\n")
	if len(m.data.Monthly) == 0 {
		b.WriteString(theme.StyleDimmed.Render("no sales yet"))
		return b.String()
	}
	var peak float64
	for _, ms := range m.data.Monthly {
		peak = math.Max(peak, ms.TotalSales.Float())
	}
	for i, ms := range m.data.Monthly {
		v := ms.TotalSales.Float()
		fmt.Fprintf(&b, "%-8s %s %s", ms.Month, m.bar(v, peak, theme.ColorSales), theme.Money(v))
		if i < len(m.data.Monthly)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderTop() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render(fmt.Sprintf("Top %d products", m.limit)) + "\n")
	if len(m.data.Top) == 0 {
		b.WriteString(theme.StyleDimmed.Render("no sales yet"))
		return b.String()
	}
	var peak float64
	for _, p := range m.data.Top {
		peak = math.Max(peak, float64(p.TotalQuantity))
	}
	for i, p := range m.data.Top {
		fmt.Fprintf(&b, "%-18s %s %d", theme.Truncate(p.Name, 18),
			m.bar(float64(p.TotalQuantity), peak, theme.ColorQuantity), p.TotalQuantity)
		if i < len(m.data.Top)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) renderExpenses() string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Expenses this month") + "\n")
	if len(m.data.Expenses) == 0 {
		b.WriteString(theme.StyleDimmed.Render("no expenses recorded"))
		return b.String()
	}
	var peak float64
	for _, e := range m.data.Expenses {
		peak = math.Max(peak, e.TotalAmount.Float())
	}
	for i, e := range m.data.Expenses {
		fmt.Fprintf(&b, "%-18s %s %s", theme.Truncate(e.Category, 18),
			m.bar(e.TotalAmount.Float(), peak, theme.ColorExpense), theme.Money(e.TotalAmount.Float()))
		if i < len(m.data.Expenses)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// bar draws v relative to peak, scaled by the animation progress.
func (m Model) bar(v, peak float64, color lipgloss.Color) string {
	pct := 0.0
	if peak > 0 {
		pct = v / peak
	}
	pct *= math.Max(0, math.Min(m.progress, 1))
	filled := max(0, min(int(math.Round(pct*barWidth)), barWidth))
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		theme.StyleDimmed.Render(strings.Repeat("░", barWidth-filled))
}
