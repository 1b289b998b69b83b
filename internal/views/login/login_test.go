package login

import (
	"context"
	"sync"
	"testing"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/session"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/nav"
	"github.com/biz-dashboard/tui/internal/views/viewtest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu    sync.Mutex
	pair  client.TokenPair
	err   error
	calls [][2]string
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (client.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]string{username, password})
	return f.pair, f.err
}

func setup(t *testing.T, api *fakeAPI) (Model, *session.Session, *toast.Queue) {
	t.Helper()
	q := toast.NewQueue(toast.WithDefaultExpiry(0))
	t.Cleanup(q.Close)
	s := session.New(session.NewMemoryStore())
	m := New(context.Background(), api, s, q, 1)
	m.Init()
	return m, s, q
}

func signIn(m Model, username, password string) (Model, tea.Cmd) {
	if username != "" {
		m, _ = m.Update(viewtest.Runes(username))
	}
	m, _ = m.Update(viewtest.Key(tea.KeyTab))
	if password != "" {
		m, _ = m.Update(viewtest.Runes(password))
	}
	return m.Update(viewtest.Key(tea.KeyEnter))
}

func TestBothFieldsRequired(t *testing.T) {
	api := &fakeAPI{}
	m, s, q := setup(t, api)

	m, cmd := signIn(m, "admin", "")
	assert.Nil(t, cmd)
	assert.Empty(t, api.calls)
	assert.False(t, s.IsAuthenticated())
	require.Len(t, q.Items(), 1)
	assert.Equal(t, "Username and password are required", q.Items()[0].Message)
	assert.Contains(t, m.View(), "Username and password are required")
}

func TestSuccessStoresTokens(t *testing.T) {
	api := &fakeAPI{pair: client.TokenPair{Access: "acc", Refresh: "ref"}}
	m, s, q := setup(t, api)

	m, cmd := signIn(m, " admin ", "secret")
	res, ok := viewtest.Find[ResultMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	assert.Equal(t, [][2]string{{"admin", "secret"}}, api.calls)

	_, cmd = m.Update(res)
	require.NotNil(t, cmd)
	assert.Equal(t, nav.LoggedInMsg{}, cmd())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "acc", s.AccessToken())
	assert.Equal(t, "ref", s.RefreshToken())
	assert.Empty(t, q.Items())
}

func TestRejectedCredentials(t *testing.T) {
	api := &fakeAPI{err: &client.APIError{Status: 401, Body: []byte(`{"detail":"No active account found with the given credentials"}`)}}
	m, s, q := setup(t, api)

	m, cmd := signIn(m, "admin", "wrong")
	res, _ := viewtest.Find[ResultMsg](viewtest.Drain(cmd))
	m, cmd = m.Update(res)

	assert.Nil(t, cmd)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, session.Anonymous, s.State())
	require.Len(t, q.Items(), 1)
	assert.Equal(t, FailedMessage, q.Items()[0].Message)
	assert.Equal(t, toast.Error, q.Items()[0].Severity)
	assert.Contains(t, m.View(), FailedMessage)
}

func TestEmptyAccessTokenIsAFailure(t *testing.T) {
	api := &fakeAPI{pair: client.TokenPair{}}
	m, s, q := setup(t, api)

	m, cmd := signIn(m, "admin", "secret")
	res, _ := viewtest.Find[ResultMsg](viewtest.Drain(cmd))
	_, cmd = m.Update(res)

	assert.Nil(t, cmd)
	assert.False(t, s.IsAuthenticated())
	require.Len(t, q.Items(), 1)
	assert.Equal(t, FailedMessage, q.Items()[0].Message)
}

func TestStaleResultIgnored(t *testing.T) {
	m, s, _ := setup(t, &fakeAPI{})
	_, cmd := m.Update(ResultMsg{Gen: 0, Tokens: client.TokenPair{Access: "late"}})
	assert.Nil(t, cmd)
	assert.False(t, s.IsAuthenticated())
}

func TestBannerRendered(t *testing.T) {
	m, _, _ := setup(t, &fakeAPI{})
	m.SetSize(100, 40)
	view := m.View()
	assert.Contains(t, view, "Sign in")
	assert.Contains(t, view, "Username")
}
