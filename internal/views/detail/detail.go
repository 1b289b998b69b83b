// Package detail renders the order detail flyout.
package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/charmbracelet/lipgloss"
)

const (
	panelWidth = 72
	labelWidth = 12
)

var (
	stylePanel = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.ColorBorder).
			Padding(0, 1)

	styleLabel = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed).
			Width(labelWidth)

	styleValue = lipgloss.NewStyle().
			Foreground(theme.ColorBright)

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorBright)

	styleFooter = lipgloss.NewStyle().
			Foreground(theme.ColorDimmed)

	styleSectionHeader = lipgloss.NewStyle().
				Bold(true).
				Foreground(theme.ColorDimmed)

	styleTotal = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorSales)
)

// Model holds the order shown in the flyout.
type Model struct {
	Order *client.Order
	Now   func() time.Time
}

// New creates a detail model for o.
func New(o *client.Order) Model {
	return Model{Order: o, Now: time.Now}
}

// View renders the detail panel. Returns an empty string if no order is set.
func (m Model) View() string {
	if m.Order == nil {
		return ""
	}
	return stylePanel.Width(panelWidth).Render(m.renderInner(m.Order))
}

func (m Model) renderInner(o *client.Order) string {
	var b strings.Builder

	b.WriteString(styleTitle.Render(fmt.Sprintf("Order #%d", o.ID)) + "\n")
	b.WriteString(strings.Repeat("─", panelWidth-4) + "\n")

	writeRow(&b, "Customer", o.CustomerLabel())
	if !o.OrderDate.IsZero() {
		date := o.OrderDate.Local().Format("2006-01-02 15:04")
		now := time.Now
		if m.Now != nil {
			now = m.Now
		}
		writeRow(&b, "Date", date+"  "+styleFooter.Render(formatAge(now().Sub(o.OrderDate))))
	}
	writeRow(&b, "Payment", client.PaymentLabel(o.PaymentMethod))

	b.WriteString("\n")
	b.WriteString(styleSectionHeader.Render(fmt.Sprintf("Items (%d)", len(o.Items))) + "\n")
	if len(o.Items) == 0 {
		b.WriteString(styleFooter.Render("  no items") + "\n")
	}
	for _, it := range o.Items {
		b.WriteString(renderItem(it) + "\n")
	}

	b.WriteString("\n")
	writeRow(&b, "Total", styleTotal.Render(theme.Money(orderTotal(o))))

	b.WriteString("\n")
	b.WriteString(styleFooter.Render("[esc] close"))
	return b.String()
}

func renderItem(it client.OrderItem) string {
	name := it.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", it.Product)
	}
	meta := it.ProductSKU
	if it.ProductCategory != "" {
		if meta != "" {
			meta += " · "
		}
		meta += it.ProductCategory
	}
	return fmt.Sprintf("  %-24s %-22s %4d × %-10s %12s",
		theme.Truncate(name, 24),
		styleFooter.Render(theme.Truncate(meta, 22)),
		it.Quantity,
		theme.Money(it.PriceAtSale.Float()),
		theme.Money(it.LineTotal()),
	)
}

// orderTotal prefers the server's total and falls back to the sum of lines.
func orderTotal(o *client.Order) float64 {
	if o.TotalAmount != 0 {
		return o.TotalAmount.Float()
	}
	var sum float64
	for _, it := range o.Items {
		sum += it.LineTotal()
	}
	return sum
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(styleLabel.Render(label+":") + styleValue.Render(value) + "\n")
}

func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return ""
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh %dm ago", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours())/24)
	}
}
