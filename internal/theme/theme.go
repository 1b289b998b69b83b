// Package theme provides the Lip Gloss color palette and reusable styles
// for the dashboard TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Severity colors for notifications.
var (
	ColorInfo    = lipgloss.Color("#3b82f6")
	ColorSuccess = lipgloss.Color("#16a34a")
	ColorError   = lipgloss.Color("#dc2626")
)

// Stock level colors.
var (
	ColorStockOK  = lipgloss.Color("#22c55e")
	ColorStockLow = lipgloss.Color("#d97706")
	ColorStockOut = lipgloss.Color("#dc2626")
)

// Chart colors.
var (
	ColorSales    = lipgloss.Color("#06b6d4")
	ColorQuantity = lipgloss.Color("#a855f7")
	ColorExpense  = lipgloss.Color("#f59e0b")
	ColorProfit   = lipgloss.Color("#22c55e")
	ColorLoss     = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorDefault = lipgloss.Color("#9ca3af")
	ColorAccent  = lipgloss.Color("#7c3aed")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorHealthy = lipgloss.Color("#22c55e")
)

// SeverityColor returns the color for a notification severity name.
func SeverityColor(severity string) lipgloss.Color {
	switch severity {
	case "success":
		return ColorSuccess
	case "error":
		return ColorError
	case "info":
		return ColorInfo
	default:
		return ColorDefault
	}
}

// SeverityGlyph returns the leading glyph for a notification severity.
func SeverityGlyph(severity string) string {
	switch severity {
	case "success":
		return "✓"
	case "error":
		return "✗"
	default:
		return "●"
	}
}

// StockColor returns the color for a stock level given its low threshold.
func StockColor(stock, lowThreshold int) lipgloss.Color {
	switch {
	case stock <= 0:
		return ColorStockOut
	case stock <= lowThreshold:
		return ColorStockLow
	default:
		return ColorStockOK
	}
}

// ProfitColor colors a signed amount.
func ProfitColor(v float64) lipgloss.Color {
	if v < 0 {
		return ColorLoss
	}
	return ColorProfit
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorDimmed).
			Width(14)
)

// Currency is the symbol prepended to money amounts.
var Currency = "₹"

// Money formats an amount with two decimals and the currency symbol.
func Money(v float64) string {
	return fmt.Sprintf("%s%.2f", Currency, v)
}

// Truncate shortens s to n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-1]) + "…"
}
