// Package nav names the dashboard pages and carries navigation requests
// from pages to the root model.
package nav

import tea "github.com/charmbracelet/bubbletea"

// Page identifies a full-screen view.
type Page int

const (
	Login Page = iota
	Analytics
	Products
	Orders
	OrderCreate
	Expenses
)

// Tabs lists the pages reachable from the header, in order.
var Tabs = []Page{Analytics, Products, Orders, OrderCreate, Expenses}

func (p Page) String() string {
	switch p {
	case Login:
		return "Login"
	case Analytics:
		return "Dashboard"
	case Products:
		return "Products"
	case Orders:
		return "Orders"
	case OrderCreate:
		return "Create Order"
	case Expenses:
		return "Expenses"
	}
	return "?"
}

// RequiresAuth reports whether the page needs a signed-in session.
func (p Page) RequiresAuth() bool {
	return p != Login
}

// Next returns the tab after p, wrapping around.
func Next(p Page) Page {
	for i, t := range Tabs {
		if t == p {
			return Tabs[(i+1)%len(Tabs)]
		}
	}
	return Tabs[0]
}

// GoMsg asks the root model to mount Page.
type GoMsg struct {
	Page Page
}

// Go returns a command emitting GoMsg{p}.
func Go(p Page) tea.Cmd {
	return func() tea.Msg { return GoMsg{Page: p} }
}

// LoggedInMsg is emitted by the login page after the session stored the
// new tokens.
type LoggedInMsg struct{}
