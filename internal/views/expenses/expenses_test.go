package expenses

import (
	"context"
	"sync"
	"testing"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/viewtest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	list      []client.Expense
	createErr error
	created   []client.ExpenseInput
}

func (f *fakeAPI) Expenses(context.Context) ([]client.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list, nil
}

func (f *fakeAPI) CreateExpense(_ context.Context, in client.ExpenseInput) (*client.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := client.Expense{ID: len(f.list) + 1, Category: in.Category, Amount: in.Amount, Date: in.Date}
	f.list = append(f.list, e)
	return &e, nil
}

func setup(t *testing.T, api *fakeAPI) (Model, *toast.Queue) {
	t.Helper()
	q := toast.NewQueue(toast.WithDefaultExpiry(0))
	t.Cleanup(q.Close)
	m := New(context.Background(), api, q, 3)
	m.SetSize(100, 40)
	loaded, ok := viewtest.Find[LoadedMsg](viewtest.Drain(m.Init()))
	require.True(t, ok)
	m, _ = m.Update(loaded)
	return m, q
}

func submit(m Model, values ...string) (Model, tea.Cmd) {
	m, _ = m.Update(viewtest.Runes("n"))
	for i, v := range values {
		if v != "" {
			m, _ = m.Update(viewtest.Runes(v))
		}
		if i < len(values)-1 {
			m, _ = m.Update(viewtest.Key(tea.KeyTab))
		}
	}
	return m.Update(viewtest.Key(tea.KeyEnter))
}

func TestValidationBlocksRequest(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"missing category", []string{"", "10", "2025-01-01", ""}, "Category, amount and date are required"},
		{"zero amount", []string{"Rent", "0", "2025-01-01", ""}, "Amount must be a positive number"},
		{"bad date", []string{"Rent", "10", "2025/01/01", ""}, "Date must be YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			m, q := setup(t, api)
			_, cmd := submit(m, tt.values...)

			assert.Nil(t, cmd)
			assert.Empty(t, api.created)
			items := q.Items()
			require.Len(t, items, 1)
			assert.Equal(t, toast.Error, items[0].Severity)
			assert.Equal(t, tt.want, items[0].Message)
		})
	}
}

func TestCreateExpense(t *testing.T) {
	api := &fakeAPI{}
	m, q := setup(t, api)

	m, cmd := submit(m, "Rent", "1200.50", "2025-02-01", "february")
	created, ok := viewtest.Find[CreatedMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	assert.Equal(t, []client.ExpenseInput{{Category: "Rent", Amount: 1200.5, Date: "2025-02-01", Note: "february"}}, api.created)

	m, cmd = m.Update(created)
	items := q.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Expense added", items[0].Message)
	assert.Equal(t, toast.Success, items[0].Severity)
	assert.Empty(t, m.Draft().Category)

	loaded, ok := viewtest.Find[LoadedMsg](viewtest.Drain(cmd))
	require.True(t, ok)
	m, _ = m.Update(loaded)
	require.Len(t, m.Expenses(), 1)
	assert.Contains(t, m.View(), "Rent")
	assert.Contains(t, m.View(), "total ₹1200.50")
}

func TestCreateFailure(t *testing.T) {
	api := &fakeAPI{createErr: &client.APIError{Status: 400, Body: []byte(`{"amount":["Ensure this value is greater than 0."]}`)}}
	m, q := setup(t, api)

	m, cmd := submit(m, "Rent", "5", "2025-02-01", "")
	created, _ := viewtest.Find[CreatedMsg](viewtest.Drain(cmd))
	m, _ = m.Update(created)

	require.Len(t, q.Items(), 1)
	assert.Equal(t, "amount: Ensure this value is greater than 0.", q.Items()[0].Message)
	assert.Equal(t, "Rent", m.Draft().Category)
}

func TestLateResultFromPreviousMountIgnored(t *testing.T) {
	m, q := setup(t, &fakeAPI{})
	m, _ = m.Update(LoadedMsg{Gen: 2, Expenses: []client.Expense{{ID: 1}}})
	m, _ = m.Update(CreatedMsg{Gen: 2})
	assert.Empty(t, m.Expenses())
	assert.Empty(t, q.Items())
}
