// Package client provides the HTTP client for the business dashboard REST API.
// Types mirror the API's JSON without depending on any server code.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Decimal is a money or quantity amount. The API sends decimals either as
// JSON numbers or as numeric strings ("12.50"); both decode.
type Decimal float64

func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("decimal %q: %w", s, err)
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}

// MarshalJSON writes two decimal places as a string, the form the API's
// decimal fields accept.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(d), 'f', 2, 64))
}

func (d Decimal) Float() float64 { return float64(d) }

// TokenPair is the /token/ response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Product struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	SKU               string    `json:"sku"`
	BuyPrice          Decimal   `json:"buy_price"`
	SellPrice         Decimal   `json:"sell_price"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	IsLowStock        bool      `json:"is_low_stock"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProductInput is the POST /products/ body.
type ProductInput struct {
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Category  string  `json:"category"`
	BuyPrice  Decimal `json:"buy_price"`
	SellPrice Decimal `json:"sell_price"`
	Stock     int     `json:"stock"`
}

type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	City  string `json:"city"`
}

// PaymentMethod is one of the API's order payment choices.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentUPI   PaymentMethod = "UPI"
	PaymentCard  PaymentMethod = "CARD"
	PaymentOther PaymentMethod = "OTHER"
)

// PaymentMethods lists the choices in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentUPI, PaymentCard, PaymentOther}

type OrderItem struct {
	ID              int     `json:"id"`
	Product         int     `json:"product"`
	ProductName     string  `json:"product_name"`
	ProductSKU      string  `json:"product_sku"`
	ProductCategory string  `json:"product_category"`
	Quantity        int     `json:"quantity"`
	PriceAtSale     Decimal `json:"price_at_sale"`
	TotalPrice      Decimal `json:"total_price"`
}

// LineTotal prefers the server's total and falls back to quantity × price.
func (it OrderItem) LineTotal() float64 {
	if it.TotalPrice != 0 {
		return it.TotalPrice.Float()
	}
	return float64(it.Quantity) * it.PriceAtSale.Float()
}

type Order struct {
	ID            int           `json:"id"`
	Customer      *int          `json:"customer"`
	CustomerName  string        `json:"customer_name"`
	OrderDate     time.Time     `json:"order_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   Decimal       `json:"total_amount"`
}

// CustomerLabel is the customer's name, its id, or "Guest".
func (o Order) CustomerLabel() string {
	switch {
	case o.CustomerName != "":
		return o.CustomerName
	case o.Customer != nil:
		return strconv.Itoa(*o.Customer)
	default:
		return "Guest"
	}
}

type OrderItemInput struct {
	Product  int `json:"product"`
	Quantity int `json:"quantity"`
}

// OrderInput is the POST /orders/ body. A nil Customer is a guest order.
type OrderInput struct {
	Customer      *int             `json:"customer"`
	OrderDate     time.Time        `json:"order_date"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Items         []OrderItemInput `json:"items"`
}

type Expense struct {
	ID       int     `json:"id"`
	Category string  `json:"category"`
	Amount   Decimal `json:"amount"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

// ExpenseInput is the POST /expenses/ body. Date is YYYY-MM-DD.
type ExpenseInput struct {
	Category string  `json:"category"`
	Amount   Decimal `json:"amount"`
	Date     string  `json:"date"`
	Note     string  `json:"note,omitempty"`
}

type SalesSummary struct {
	TodaySales     Decimal `json:"today_sales"`
	MonthSales     Decimal `json:"month_sales"`
	TotalRevenue   Decimal `json:"total_revenue"`
	TotalExpense   Decimal `json:"total_expense"`
	TotalProfit    Decimal `json:"total_profit"`
	TotalOrders    int     `json:"total_orders"`
	TotalCustomers int     `json:"total_customers"`
}

type MonthlySales struct {
	Month      string  `json:"month"` // YYYY-MM
	TotalSales Decimal `json:"total_sales"`
}

type TopProduct struct {
	ProductID     int    `json:"product_id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Category      string `json:"category"`
	TotalQuantity int    `json:"total_quantity"`
}

type ExpenseCategoryTotal struct {
	Category    string  `json:"category"`
	TotalAmount Decimal `json:"total_amount"`
}
