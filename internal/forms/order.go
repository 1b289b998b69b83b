package forms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/biz-dashboard/tui/internal/client"
)

// OrderDateLayout is how the order date is typed in the form.
const OrderDateLayout = "2006-01-02 15:04"

// ItemDraft is one order line: a product id and a quantity, both as typed.
type ItemDraft struct {
	ProductID string `validate:"required"`
	Quantity  string `validate:"required,number,positive"`
}

// OrderDraft is the order creation form. An empty CustomerID is a guest order.
type OrderDraft struct {
	Items      []ItemDraft `validate:"min=1,dive"`
	CustomerID string      `validate:"omitempty,number"`
	OrderDate  string      `validate:"required,datetime=2006-01-02 15:04"`
	Payment    client.PaymentMethod
}

var orderMessages = messages{
	"Items":      "Add at least one item",
	"ProductID":  "Select product for all items",
	"Quantity":   "Quantity must be >= 1",
	"CustomerID": "Customer must be a customer id",
	"OrderDate":  "Order date must be YYYY-MM-DD HH:MM",
}

// NewOrderDraft returns a draft with one empty line, the current time and
// cash payment.
func NewOrderDraft(now time.Time) OrderDraft {
	return OrderDraft{
		Items:     []ItemDraft{{Quantity: "1"}},
		OrderDate: now.Format(OrderDateLayout),
		Payment:   client.PaymentCash,
	}
}

// AddItem appends an empty line with quantity 1.
func (d *OrderDraft) AddItem() {
	d.Items = append(d.Items, ItemDraft{Quantity: "1"})
}

// RemoveItem drops line i. Out-of-range indexes are ignored.
func (d *OrderDraft) RemoveItem(i int) {
	if i < 0 || i >= len(d.Items) {
		return
	}
	d.Items = append(d.Items[:i:i], d.Items[i+1:]...)
}

// Reset restores the state of NewOrderDraft.
func (d *OrderDraft) Reset(now time.Time) {
	*d = NewOrderDraft(now)
}

// Validate checks the form locally, including the stock rule: for every line
// whose product is in products, the cached stock must cover the quantity.
// products is whatever the page fetched last, so this is a best-effort check;
// the server still decides.
func (d OrderDraft) Validate(products []client.Product) error {
	t := d.trimmed()
	if err := check(t, orderMessages); err != nil {
		return err
	}
	return checkStock(t.Items, products)
}

// Payload validates the draft and coerces it into the API body. Dates are
// read in loc (time.Local when nil).
func (d OrderDraft) Payload(products []client.Product, loc *time.Location) (client.OrderInput, error) {
	if err := d.Validate(products); err != nil {
		return client.OrderInput{}, err
	}
	t := d.trimmed()
	if loc == nil {
		loc = time.Local
	}
	when, err := time.ParseInLocation(OrderDateLayout, t.OrderDate, loc)
	if err != nil {
		return client.OrderInput{}, &ValidationError{Field: "OrderDate", Message: orderMessages["OrderDate"]}
	}

	in := client.OrderInput{
		OrderDate:     when,
		PaymentMethod: t.Payment,
		Items:         make([]client.OrderItemInput, 0, len(t.Items)),
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = client.PaymentCash
	}
	if t.CustomerID != "" {
		id, _ := strconv.Atoi(t.CustomerID)
		in.Customer = &id
	}
	for _, it := range t.Items {
		pid, _ := strconv.Atoi(it.ProductID)
		qty, _ := strconv.Atoi(it.Quantity)
		in.Items = append(in.Items, client.OrderItemInput{Product: pid, Quantity: qty})
	}
	return in, nil
}

func checkStock(items []ItemDraft, products []client.Product) error {
	byID := make(map[string]client.Product, len(products))
	for _, p := range products {
		byID[strconv.Itoa(p.ID)] = p
	}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		qty, _ := strconv.Atoi(it.Quantity)
		if qty > p.Stock {
			return &ValidationError{
				Field:   "Quantity",
				Message: fmt.Sprintf("Not enough stock for %s", p.Name),
			}
		}
	}
	return nil
}

func (d OrderDraft) trimmed() OrderDraft {
	out := OrderDraft{
		CustomerID: strings.TrimSpace(d.CustomerID),
		OrderDate:  strings.TrimSpace(d.OrderDate),
		Payment:    d.Payment,
		Items:      make([]ItemDraft, len(d.Items)),
	}
	for i, it := range d.Items {
		out.Items[i] = ItemDraft{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  strings.TrimSpace(it.Quantity),
		}
	}
	return out
}
