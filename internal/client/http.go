package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// API makes REST calls to the dashboard backend. Every request goes through
// an AuthTransport bound to the TokenSource given to NewAPI.
type API struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// Option configures an API.
type Option func(*API)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *API) { a.client.Timeout = d }
}

// WithLogger logs each exchange at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(a *API) { a.logger = l }
}

// WithBaseTransport replaces the transport under the AuthTransport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(a *API) {
		if at, ok := a.client.Transport.(*AuthTransport); ok {
			at.Base = rt
		}
	}
}

// NewAPI creates a client targeting baseURL (e.g. "http://127.0.0.1:8000/api").
func NewAPI(baseURL string, tokens TokenSource, opts ...Option) *API {
	host := ""
	if u, err := url.Parse(baseURL); err == nil {
		host = u.Host
	}
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout:   defaultTimeout,
			Transport: &AuthTransport{Tokens: tokens, Host: host},
		},
		logger: zerolog.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// BaseURL returns the API root the client targets.
func (a *API) BaseURL() string { return a.baseURL }

// Login exchanges credentials at POST /token/.
func (a *API) Login(ctx context.Context, username, password string) (TokenPair, error) {
	body := map[string]string{"username": username, "password": password}
	var out TokenPair
	if err := a.post(ctx, "/token/", body, &out); err != nil {
		return TokenPair{}, err
	}
	return out, nil
}

// Products fetches /products/.
func (a *API) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := a.get(ctx, "/products/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProduct sends POST /products/.
func (a *API) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := a.post(ctx, "/products/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Orders fetches /orders/.
func (a *API) Orders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := a.get(ctx, "/orders/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder sends POST /orders/.
func (a *API) CreateOrder(ctx context.Context, in OrderInput) (*Order, error) {
	var out Order
	if err := a.post(ctx, "/orders/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Customers fetches /customers/.
func (a *API) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := a.get(ctx, "/customers/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Expenses fetches /expenses/.
func (a *API) Expenses(ctx context.Context) ([]Expense, error) {
	var out []Expense
	if err := a.get(ctx, "/expenses/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense sends POST /expenses/.
func (a *API) CreateExpense(ctx context.Context, in ExpenseInput) (*Expense, error) {
	var out Expense
	if err := a.post(ctx, "/expenses/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SalesSummary fetches /analytics/sales-summary/.
func (a *API) SalesSummary(ctx context.Context) (*SalesSummary, error) {
	var out SalesSummary
	if err := a.get(ctx, "/analytics/sales-summary/", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MonthlySales fetches /analytics/monthly-sales/.
func (a *API) MonthlySales(ctx context.Context) ([]MonthlySales, error) {
	var out []MonthlySales
	if err := a.get(ctx, "/analytics/monthly-sales/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopProducts fetches /analytics/top-products/?limit=N.
func (a *API) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []TopProduct
	if err := a.get(ctx, withQuery("/analytics/top-products/", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpensesSummary fetches /analytics/expenses-summary/ with optional
// YYYY-MM-DD bounds.
func (a *API) ExpensesSummary(ctx context.Context, start, end string) ([]ExpenseCategoryTotal, error) {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	var out []ExpenseCategoryTotal
	if err := a.get(ctx, withQuery("/analytics/expenses-summary/", q), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (a *API) get(ctx context.Context, path string, out interface{}) error {
	return a.do(ctx, http.MethodGet, path, nil, out)
}

func (a *API) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}
	return a.do(ctx, http.MethodPost, path, data, out)
}

func (a *API) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	a.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api")

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: respBody}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
