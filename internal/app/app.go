// Package app is the root Bubble Tea model. It owns the session gate, mounts
// one page at a time and renders the shared chrome around it.
package app

import (
	"context"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/logging"
	"github.com/biz-dashboard/tui/internal/session"
	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/activity"
	"github.com/biz-dashboard/tui/internal/views/analytics"
	"github.com/biz-dashboard/tui/internal/views/expenses"
	"github.com/biz-dashboard/tui/internal/views/help"
	"github.com/biz-dashboard/tui/internal/views/login"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/biz-dashboard/tui/internal/views/ordercreate"
	"github.com/biz-dashboard/tui/internal/views/orders"
	"github.com/biz-dashboard/tui/internal/views/products"
	"github.com/biz-dashboard/tui/internal/views/status"
	"github.com/biz-dashboard/tui/internal/views/toasts"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

// Overlay identifies which overlay is shown over the page.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayHelp
	OverlayActivity
)

// ToastsChangedMsg is delivered whenever the notification queue changes.
type ToastsChangedMsg struct{}

const (
	toastWidth   = 48
	activityStep = 3
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for navigation and session events.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithActivity shows buffered log lines in the activity overlay.
func WithActivity(ring *logging.Ring) Option {
	return func(m *Model) { m.activity = activity.New(ring) }
}

// WithTopProductsLimit sets how many top products the dashboard requests.
func WithTopProductsLimit(n int) Option {
	return func(m *Model) { m.topLimit = n }
}

// WithHelpStyle sets the glamour style of the help overlay.
func WithHelpStyle(style string) Option {
	return func(m *Model) { m.help.Style = style }
}

// Model is the root application model.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	api      *client.API
	session  *session.Session
	toasts   *toast.Queue
	logger   zerolog.Logger
	topLimit int
	keys     KeyMap

	width  int
	height int

	page nav.Page
	gen  int

	login       login.Model
	analytics   analytics.Model
	products    products.Model
	orders      orders.Model
	orderCreate ordercreate.Model
	expenses    expenses.Model

	overlay   Overlay
	statusBar status.Model
	activity  activity.Model
	help      help.Model
}

// New creates the root model. The first page is the dashboard when the
// stored session is authenticated and the login page otherwise.
func New(api *client.API, sess *session.Session, queue *toast.Queue, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	keys := DefaultKeyMap()
	m := Model{
		ctx:       ctx,
		cancel:    cancel,
		api:       api,
		session:   sess,
		toasts:    queue,
		logger:    zerolog.Nop(),
		topLimit:  5,
		keys:      keys,
		statusBar: status.New(api.BaseURL()),
		help:      help.New(helpSections(keys)...),
	}
	for _, o := range opts {
		o(&m)
	}
	m.page = nav.Analytics
	m.prepare()
	return m
}

func helpSections(k KeyMap) []help.Section {
	plk := products.DefaultKeyMap()
	olk := orders.DefaultKeyMap()
	ock := ordercreate.DefaultKeyMap()
	return []help.Section{
		{Title: "Global", Bindings: []key.Binding{
			k.Page1, k.Page2, k.Page3, k.Page4, k.Page5, k.Tab,
			k.Help, k.Activity, k.Dismiss, k.Logout, k.Quit, k.ForceQuit,
		}},
		{Title: "Lists and forms", Bindings: []key.Binding{
			plk.Up, plk.Down, plk.New, plk.Reload, plk.Next, plk.Prev, plk.Submit, plk.Cancel,
		}},
		{Title: "Orders", Bindings: []key.Binding{olk.Open, olk.Close, olk.New}},
		{Title: "Create order", Bindings: []key.Binding{
			ock.Up, ock.Down, ock.Left, ock.Right, ock.AddItem, ock.DelItem, ock.Submit, ock.Release,
		}},
		{Title: "Overlays", Bindings: []key.Binding{k.Up, k.Down, k.Escape}},
	}
}

// Init starts the toast listener and the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForToasts(m.toasts), m.initPage())
}

// Page returns the mounted page.
func (m Model) Page() nav.Page { return m.page }

// Overlay returns the open overlay.
func (m Model) Overlay() Overlay { return m.overlay }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.help.SetWidth(msg.Width)
		m.resizePage()
		return m, nil

	case ToastsChangedMsg:
		return m, waitForToasts(m.toasts)

	case nav.GoMsg:
		return m.mount(msg.Page)

	case nav.LoggedInMsg:
		m.logger.Info().Str("user", m.userLabel()).Msg("signed in")
		return m.mount(nav.Analytics)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updatePage(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	if m.overlay != OverlayNone {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Help):
			m.overlay = toggle(m.overlay, OverlayHelp)
		case key.Matches(msg, m.keys.Activity):
			m.overlay = toggle(m.overlay, OverlayActivity)
			m.activity.Refresh()
		case key.Matches(msg, m.keys.Up):
			m.activity.ScrollUp(activityStep)
		case key.Matches(msg, m.keys.Down):
			m.activity.ScrollDown(activityStep)
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		}
		return m, nil
	}

	if m.capturing() {
		return m.updatePage(msg)
	}

	for i, b := range m.keys.pageKeys() {
		if key.Matches(msg, b) {
			return m.mount(nav.Tabs[i])
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Tab):
		return m.mount(nav.Next(m.page))
	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Activity):
		m.overlay = OverlayActivity
		m.activity.Refresh()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissOldest()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		if m.session.IsAuthenticated() {
			return m.logout()
		}
	}

	return m.updatePage(msg)
}

func toggle(current, o Overlay) Overlay {
	if current == o {
		return OverlayNone
	}
	return o
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	user := m.userLabel()
	if err := m.session.Logout(); err != nil {
		m.logger.Error().Err(err).Msg("logout")
		m.toasts.Error("Failed to sign out")
		return m, nil
	}
	m.logger.Info().Str("user", user).Msg("signed out")
	m.toasts.Info("Signed out")
	return m.mount(nav.Login)
}

// mount replaces the active page with a fresh instance of p. Pages that need
// a session fall back to login while signed out. Results addressed to any
// earlier mount carry a stale generation and are dropped by the page.
func (m Model) mount(p nav.Page) (tea.Model, tea.Cmd) {
	m.page = p
	m.prepare()
	return m, m.initPage()
}

func (m *Model) prepare() {
	if m.page.RequiresAuth() && !m.session.IsAuthenticated() {
		m.page = nav.Login
	}
	m.gen++
	m.overlay = OverlayNone

	switch m.page {
	case nav.Login:
		m.login = login.New(m.ctx, m.api, m.session, m.toasts, m.gen)
	case nav.Analytics:
		m.analytics = analytics.New(m.ctx, m.api, m.toasts, m.gen, m.topLimit)
	case nav.Products:
		m.products = products.New(m.ctx, m.api, m.toasts, m.gen)
	case nav.Orders:
		m.orders = orders.New(m.ctx, m.api, m.toasts, m.gen)
	case nav.OrderCreate:
		m.orderCreate = ordercreate.New(m.ctx, m.api, m.toasts, m.gen)
	case nav.Expenses:
		m.expenses = expenses.New(m.ctx, m.api, m.toasts, m.gen)
	}
	m.resizePage()
	m.refreshStatus()
	m.logger.Debug().Str("page", m.page.String()).Int("gen", m.gen).Msg("mount")
}

func (m *Model) refreshStatus() {
	m.statusBar.Page = m.page
	m.statusBar.Authenticated = m.session.IsAuthenticated()
	m.statusBar.User = ""
	m.statusBar.ExpiresAt = time.Time{}
	if c, ok := m.session.Claims(); ok {
		m.statusBar.User = m.userLabel()
		m.statusBar.ExpiresAt = c.ExpiresAt
	}
}

func (m Model) userLabel() string {
	c, ok := m.session.Claims()
	switch {
	case !ok:
		return ""
	case c.Username != "":
		return c.Username
	case c.UserID != "":
		return "user " + c.UserID
	}
	return ""
}

func (m Model) initPage() tea.Cmd {
	switch m.page {
	case nav.Login:
		return m.login.Init()
	case nav.Analytics:
		return m.analytics.Init()
	case nav.Products:
		return m.products.Init()
	case nav.Orders:
		return m.orders.Init()
	case nav.OrderCreate:
		return m.orderCreate.Init()
	case nav.Expenses:
		return m.expenses.Init()
	}
	return nil
}

// updatePage forwards msg to the mounted page only.
func (m Model) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case nav.Login:
		m.login, cmd = m.login.Update(msg)
	case nav.Analytics:
		m.analytics, cmd = m.analytics.Update(msg)
	case nav.Products:
		m.products, cmd = m.products.Update(msg)
	case nav.Orders:
		m.orders, cmd = m.orders.Update(msg)
	case nav.OrderCreate:
		m.orderCreate, cmd = m.orderCreate.Update(msg)
	case nav.Expenses:
		m.expenses, cmd = m.expenses.Update(msg)
	}
	return m, cmd
}

func (m Model) capturing() bool {
	switch m.page {
	case nav.Login:
		return m.login.Capturing()
	case nav.Analytics:
		return m.analytics.Capturing()
	case nav.Products:
		return m.products.Capturing()
	case nav.Orders:
		return m.orders.Capturing()
	case nav.OrderCreate:
		return m.orderCreate.Capturing()
	case nav.Expenses:
		return m.expenses.Capturing()
	}
	return false
}

// pageHeight is what remains after the status bar and footer.
func (m Model) pageHeight() int {
	return max(0, m.height-lipgloss.Height(m.statusBar.View())-1)
}

func (m *Model) resizePage() {
	w, h := m.width, m.pageHeight()
	switch m.page {
	case nav.Login:
		m.login.SetSize(w, h)
	case nav.Analytics:
		m.analytics.SetSize(w, h)
	case nav.Products:
		m.products.SetSize(w, h)
	case nav.Orders:
		m.orders.SetSize(w, h)
	case nav.OrderCreate:
		m.orderCreate.SetSize(w, h)
	case nav.Expenses:
		m.expenses.SetSize(w, h)
	}
}

func (m Model) pageView() string {
	switch m.page {
	case nav.Login:
		return m.login.View()
	case nav.Analytics:
		return m.analytics.View()
	case nav.Products:
		return m.products.View()
	case nav.Orders:
		return m.orders.View()
	case nav.OrderCreate:
		return m.orderCreate.View()
	case nav.Expenses:
		return m.expenses.View()
	}
	return ""
}

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var body string
	switch m.overlay {
	case OverlayHelp:
		body = m.help.View()
	case OverlayActivity:
		body = m.activity.View(m.width, m.pageHeight())
	default:
		body = m.pageView()
	}

	sections := []string{m.statusBar.View(), body}
	if items := m.toasts.Items(); len(items) > 0 {
		sections = append(sections,
			lipgloss.PlaceHorizontal(m.width, lipgloss.Right, toasts.View(items, min(toastWidth, m.width))))
	}
	sections = append(sections, m.footer())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) footer() string {
	if m.overlay != OverlayNone {
		return theme.StyleDimmed.Render("esc: close  j/k: scroll  ctrl+c: quit")
	}
	if !m.session.IsAuthenticated() {
		return theme.StyleDimmed.Render("ctrl+c: quit")
	}
	return theme.StyleDimmed.Render("1-5: pages  tab: next  ?: help  d: activity  x: dismiss  L: sign out  q: quit")
}

// waitForToasts blocks until the queue signals a change. It returns nil once
// the queue is closed, which ends the listener.
func waitForToasts(q *toast.Queue) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-q.Changes(); !ok {
			return nil
		}
		return ToastsChangedMsg{}
	}
}
