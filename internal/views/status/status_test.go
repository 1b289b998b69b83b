package status

import (
	"strings"
	"testing"
	"time"

	"github.com/biz-dashboard/tui/internal/views/nav"
)

func TestSignedOutShowsOnlyLogin(t *testing.T) {
	m := New("127.0.0.1:8000")
	m.Width = 120
	v := m.View()
	if !strings.Contains(v, "signed out") {
		t.Errorf("expected signed out marker:\n%s", v)
	}
	if strings.Contains(v, "Products") {
		t.Errorf("tabs should be hidden while signed out:\n%s", v)
	}
}

func TestTabsAndUser(t *testing.T) {
	m := New("127.0.0.1:8000")
	m.Authenticated = true
	m.User = "admin"
	m.Page = nav.Orders
	m.Width = 140
	v := m.View()
	for _, want := range []string{"1 Dashboard", "2 Products", "3 Orders", "4 Create Order", "5 Expenses", "● admin", "127.0.0.1:8000"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestExpiryWarning(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := New("")
	m.Authenticated = true
	m.Width = 140
	m.Now = func() time.Time { return now }

	m.ExpiresAt = now.Add(time.Hour)
	if v := m.View(); strings.Contains(v, "expire") {
		t.Errorf("no warning expected an hour out:\n%s", v)
	}

	m.ExpiresAt = now.Add(90 * time.Second)
	if v := m.View(); !strings.Contains(v, "expires in 2m") {
		t.Errorf("expected expiry warning:\n%s", v)
	}

	m.ExpiresAt = now.Add(-time.Second)
	if v := m.View(); !strings.Contains(v, "token expired") {
		t.Errorf("expected expired marker:\n%s", v)
	}
}
