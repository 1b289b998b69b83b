package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
	"github.com/biz-dashboard/tui/internal/toast"
	"github.com/biz-dashboard/tui/internal/views/viewtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu         sync.Mutex
	monthlyErr error
	limit      int
	start, end string
}

func (f *fakeAPI) SalesSummary(context.Context) (*client.SalesSummary, error) {
	return &client.SalesSummary{TodaySales: 150, MonthSales: 900, TotalRevenue: 5000, TotalExpense: 1200, TotalProfit: 3800, TotalOrders: 42, TotalCustomers: 7}, nil
}

func (f *fakeAPI) MonthlySales(context.Context) ([]client.MonthlySales, error) {
	if f.monthlyErr != nil {
		return nil, f.monthlyErr
	}
	return []client.MonthlySales{{Month: "2025-01", TotalSales: 400}, {Month: "2025-02", TotalSales: 800}}, nil
}

func (f *fakeAPI) TopProducts(_ context.Context, limit int) ([]client.TopProduct, error) {
	f.mu.Lock()
	f.limit = limit
	f.mu.Unlock()
	return []client.TopProduct{{Name: "Notebook", TotalQuantity: 30}}, nil
}

func (f *fakeAPI) ExpensesSummary(_ context.Context, start, end string) ([]client.ExpenseCategoryTotal, error) {
	f.mu.Lock()
	f.start, f.end = start, end
	f.mu.Unlock()
	return []client.ExpenseCategoryTotal{{Category: "Rent", TotalAmount: 1000}}, nil
}

func mount(t *testing.T, api *fakeAPI) (Model, *toast.Queue, LoadedMsg) {
	t.Helper()
	q := toast.NewQueue(toast.WithDefaultExpiry(0))
	t.Cleanup(q.Close)
	m := New(context.Background(), api, q, 5, 3)
	m.now = func() time.Time { return time.Date(2025, 2, 17, 12, 0, 0, 0, time.UTC) }
	loaded, ok := viewtest.Find[LoadedMsg](viewtest.Drain(m.Init()))
	require.True(t, ok)
	return m, q, loaded
}

func TestLoadCombinesAllFour(t *testing.T) {
	api := &fakeAPI{}
	m, q, loaded := mount(t, api)
	require.NoError(t, loaded.Err)

	m, cmd := m.Update(loaded)
	assert.NotNil(t, cmd, "starts the bar animation")
	assert.Equal(t, 3, api.limit)
	assert.Equal(t, "2025-02-01", api.start)
	assert.Equal(t, "2025-02-17", api.end)

	d := m.Data()
	assert.Equal(t, 42, d.Summary.TotalOrders)
	assert.Len(t, d.Monthly, 2)
	assert.Len(t, d.Top, 1)
	assert.Len(t, d.Expenses, 1)
	assert.Empty(t, q.Items())

	view := m.View()
	for _, want := range []string{"₹150.00", "₹3800.00", "2025-02", "Notebook", "Rent", "42 orders"} {
		assert.Contains(t, view, want)
	}
}

func TestAnyFailureFailsPage(t *testing.T) {
	api := &fakeAPI{monthlyErr: errors.New("500")}
	m, q, loaded := mount(t, api)
	require.Error(t, loaded.Err)

	m, _ = m.Update(loaded)
	assert.True(t, m.Failed())
	assert.Contains(t, m.View(), FailedMessage)
	assert.NotContains(t, m.View(), "Revenue")
	require.Len(t, q.Items(), 1)
	assert.Equal(t, FailedMessage, q.Items()[0].Message)
	assert.Equal(t, toast.Error, q.Items()[0].Severity)
}

func TestAnimationSettles(t *testing.T) {
	m, _, loaded := mount(t, &fakeAPI{})
	m, _ = m.Update(loaded)
	assert.Zero(t, m.Progress())

	for i := 0; i < 10*fps && m.animating; i++ {
		m, _ = m.Update(FrameMsg{Gen: 5})
	}
	assert.False(t, m.animating)
	assert.Equal(t, 1.0, m.Progress())

	_, cmd := m.Update(FrameMsg{Gen: 5})
	assert.Nil(t, cmd, "no frames once settled")
}

func TestLateMessagesIgnored(t *testing.T) {
	m, q, _ := mount(t, &fakeAPI{})
	m, cmd := m.Update(LoadedMsg{Gen: 4, Err: errors.New("late")})
	assert.Nil(t, cmd)
	assert.False(t, m.Failed())
	assert.Empty(t, q.Items())

	_, cmd = m.Update(FrameMsg{Gen: 4})
	assert.Nil(t, cmd)
}
