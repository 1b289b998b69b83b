package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/session"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/analytics"
	"github.com/biz-dashboard/tui/internal/views/login"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/biz-dashboard/tui/internal/views/products"
	"github.com/biz-dashboard/tui/internal/views/viewtest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend is a minimal dashboard API. It accepts admin/secret and records
// the Authorization header of every request.
type backend struct {
	mu     sync.Mutex
	token  string
	auth   map[string]string
	server *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{token: signedToken(t, "admin"), auth: map[string]string{}}
	reply := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "admin" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			reply(w, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		reply(w, map[string]string{"access": b.token, "refresh": "refresh-token"})
	})
	mux.HandleFunc("/api/analytics/sales-summary/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, map[string]interface{}{"today_sales": "120.50", "month_sales": 900, "total_orders": 7})
	})
	mux.HandleFunc("/api/analytics/monthly-sales/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, []map[string]interface{}{{"month": "2025-01", "total_sales": 900}})
	})
	mux.HandleFunc("/api/analytics/top-products/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, []map[string]interface{}{{"product_id": 1, "name": "Notebook", "total_quantity": 4}})
	})
	mux.HandleFunc("/api/analytics/expenses-summary/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, []map[string]interface{}{{"category": "Rent", "total_amount": "300"}})
	})
	mux.HandleFunc("/api/products/", func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		reply(w, []map[string]interface{}{})
	})
	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.auth[r.URL.Path] = r.Header.Get("Authorization")
}

func (b *backend) authFor(path string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[path]
}

func signedToken(t *testing.T, username string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  1,
		"username": username,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

type fixture struct {
	backend *backend
	session *session.Session
	toasts  *toast.Queue
}

func setup(t *testing.T, signedIn bool) (Model, *fixture) {
	t.Helper()
	b := newBackend(t)
	q := toast.NewQueue(toast.WithDefaultExpiry(0))
	t.Cleanup(q.Close)
	s := session.New(session.NewMemoryStore())
	if signedIn {
		require.NoError(t, s.Login(b.token, "refresh-token"))
	}
	api := client.NewAPI(b.server.URL+"/api", s)
	m := New(api, s, q, WithHelpStyle("notty"))
	m.Init()
	m = step(t, m, tea.WindowSizeMsg{Width: 160, Height: 50})
	return m, &fixture{backend: b, session: s, toasts: q}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	m, _ = send(t, m, msg)
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return step(t, m, viewtest.Runes(s))
}

func messages(q *toast.Queue) []string {
	var out []string
	for _, n := range q.Items() {
		out = append(out, n.Message)
	}
	return out
}

func TestStartsOnLoginWhenSignedOut(t *testing.T) {
	m, _ := setup(t, false)
	assert.Equal(t, nav.Login, m.Page())
	assert.Contains(t, m.View(), "Sign in")
	assert.Contains(t, m.View(), "signed out")
}

func TestStartsOnDashboardWithStoredSession(t *testing.T) {
	m, _ := setup(t, true)
	assert.Equal(t, nav.Analytics, m.Page())
	assert.Contains(t, m.View(), "● admin")
}

func TestGatedPagesRouteToLogin(t *testing.T) {
	m, _ := setup(t, false)
	for _, p := range nav.Tabs {
		m = step(t, m, nav.GoMsg{Page: p})
		assert.Equal(t, nav.Login, m.Page(), "page %s", p)
	}
}

func TestInvalidCredentialsStayOnLogin(t *testing.T) {
	m, f := setup(t, false)

	m = typeText(t, m, "admin")
	m = step(t, m, viewtest.Key(tea.KeyTab))
	m = typeText(t, m, "wrong")
	m, cmd := send(t, m, viewtest.Key(tea.KeyEnter))

	res, ok := viewtest.Find[login.ResultMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	require.Error(t, res.Err)

	m, cmd = send(t, m, res)
	assert.Nil(t, cmd)
	assert.Equal(t, nav.Login, m.Page())
	assert.Equal(t, session.Anonymous, f.session.State())
	assert.Equal(t, []string{login.FailedMessage}, messages(f.toasts))
	assert.Contains(t, m.View(), login.FailedMessage)
}

func TestLoginLoadsDashboard(t *testing.T) {
	m, f := setup(t, false)

	m = typeText(t, m, "admin")
	m = step(t, m, viewtest.Key(tea.KeyTab))
	m = typeText(t, m, "secret")
	m, cmd := send(t, m, viewtest.Key(tea.KeyEnter))

	res, ok := viewtest.Find[login.ResultMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	require.NoError(t, res.Err)

	m, cmd = send(t, m, res)
	require.NotNil(t, cmd)
	assert.True(t, f.session.IsAuthenticated())

	m, cmd = send(t, m, cmd())
	assert.Equal(t, nav.Analytics, m.Page())

	loaded, ok := viewtest.Find[analytics.LoadedMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	m = step(t, m, loaded)

	assert.Equal(t, 7, m.analytics.Data().Summary.TotalOrders)
	assert.Equal(t, "Bearer "+f.backend.token, f.backend.authFor("/api/analytics/sales-summary/"))
	assert.Equal(t, "Bearer "+f.backend.token, f.backend.authFor("/api/analytics/expenses-summary/"))
	assert.Contains(t, m.View(), "● admin")
	assert.Empty(t, messages(f.toasts))
}

func TestNumberKeysAndTab(t *testing.T) {
	m, _ := setup(t, true)

	m = typeText(t, m, "3")
	assert.Equal(t, nav.Orders, m.Page())

	m = step(t, m, viewtest.Key(tea.KeyTab))
	assert.Equal(t, nav.OrderCreate, m.Page())

	m = typeText(t, m, "5")
	assert.Equal(t, nav.Expenses, m.Page())

	m = step(t, m, viewtest.Key(tea.KeyTab))
	assert.Equal(t, nav.Analytics, m.Page())
}

func TestCapturingPageKeepsKeys(t *testing.T) {
	m, _ := setup(t, true)
	m = typeText(t, m, "2")
	require.Equal(t, nav.Products, m.Page())

	m = typeText(t, m, "n")
	require.True(t, m.capturing())

	m = typeText(t, m, "3")
	assert.Equal(t, nav.Products, m.Page())
	assert.Equal(t, "3", m.products.Draft().Name)

	m = step(t, m, viewtest.Key(tea.KeyEsc))
	m = typeText(t, m, "3")
	assert.Equal(t, nav.Orders, m.Page())
}

func TestLateResultsIgnored(t *testing.T) {
	m, _ := setup(t, true)
	m = typeText(t, m, "2")
	stale := m.gen
	m = typeText(t, m, "2")
	require.NotEqual(t, stale, m.gen)

	m = step(t, m, products.LoadedMsg{Gen: stale, Products: []client.Product{{ID: 1, Name: "Stale Widget"}}})
	assert.Empty(t, m.products.Products())

	m = step(t, m, products.LoadedMsg{Gen: m.gen, Products: []client.Product{{ID: 2, Name: "Fresh Widget"}}})
	require.Len(t, m.products.Products(), 1)
	assert.Contains(t, m.View(), "Fresh Widget")
}

func TestLogout(t *testing.T) {
	m, f := setup(t, true)
	m = typeText(t, m, "L")

	assert.Equal(t, nav.Login, m.Page())
	assert.Equal(t, session.Anonymous, f.session.State())
	assert.Equal(t, []string{"Signed out"}, messages(f.toasts))
	assert.Contains(t, m.View(), "signed out")
}

func TestOverlays(t *testing.T) {
	m, _ := setup(t, true)

	m = typeText(t, m, "?")
	assert.Equal(t, OverlayHelp, m.Overlay())
	assert.Contains(t, m.View(), "dismiss notification")

	m = typeText(t, m, "d")
	assert.Equal(t, OverlayActivity, m.Overlay())

	// Page keys are inert while an overlay is open.
	m = typeText(t, m, "3")
	assert.Equal(t, nav.Analytics, m.Page())

	m = step(t, m, viewtest.Key(tea.KeyEsc))
	assert.Equal(t, OverlayNone, m.Overlay())
}

func TestDismissKey(t *testing.T) {
	m, f := setup(t, true)
	f.toasts.Error("first")
	f.toasts.Info("second")
	assert.Contains(t, m.View(), "first")

	m = typeText(t, m, "x")
	assert.Equal(t, []string{"second"}, messages(f.toasts))
	assert.NotContains(t, m.View(), "first")
}

func TestForceQuitWhileCapturing(t *testing.T) {
	m, _ := setup(t, false)
	require.True(t, m.capturing())

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Error(t, m.ctx.Err())
}

func TestToastListener(t *testing.T) {
	q := toast.NewQueue(toast.WithDefaultExpiry(0))
	cmd := waitForToasts(q)

	q.Info("hello")
	assert.Equal(t, ToastsChangedMsg{}, cmd())

	q.Close()
	assert.Nil(t, waitForToasts(q)())
}
