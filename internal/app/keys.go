package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keyboard bindings.
type KeyMap struct {
	Page1     key.Binding
	Page2     key.Binding
	Page3     key.Binding
	Page4     key.Binding
	Page5     key.Binding
	Tab       key.Binding
	Up        key.Binding
	Down      key.Binding
	Escape    key.Binding
	Help      key.Binding
	Activity  key.Binding
	Dismiss   key.Binding
	Logout    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Page1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "dashboard"),
		),
		Page2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "products"),
		),
		Page3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "orders"),
		),
		Page4: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "create order"),
		),
		Page5: key.NewBinding(
			key.WithKeys("5"),
			key.WithHelp("5", "expenses"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close overlay"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "key help"),
		),
		Activity: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "activity log"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss notification"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "sign out"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit from anywhere"),
		),
	}
}

// pageKeys maps the number bindings to their tabs, in nav.Tabs order.
func (k KeyMap) pageKeys() []key.Binding {
	return []key.Binding{k.Page1, k.Page2, k.Page3, k.Page4, k.Page5}
}
