package forms

import (
	"strings"

	"github.com/biz-dashboard/tui/internal/client"
)

// ProductDraft is the products page create form.
type ProductDraft struct {
	Name      string `validate:"required"`
	SKU       string `validate:"required"`
	Category  string
	BuyPrice  string `validate:"required,money"`
	SellPrice string `validate:"required,money"`
	Stock     string `validate:"omitempty,count"`
}

var productMessages = messages{
	"Name":               "Name and SKU are required",
	"SKU":                "Name and SKU are required",
	"BuyPrice.required":  "Buy and sell price are required",
	"SellPrice.required": "Buy and sell price are required",
	"BuyPrice":           "Buy price must be a non-negative amount",
	"SellPrice":          "Sell price must be a non-negative amount",
	"Stock":              "Stock must be a whole number >= 0",
}

// Validate checks the draft without touching the network.
func (d ProductDraft) Validate() error {
	return check(d.trimmed(), productMessages)
}

// Payload validates and coerces the draft into the API body.
func (d ProductDraft) Payload() (client.ProductInput, error) {
	t := d.trimmed()
	if err := check(t, productMessages); err != nil {
		return client.ProductInput{}, err
	}
	buy, _ := parseMoney(t.BuyPrice)
	sell, _ := parseMoney(t.SellPrice)
	return client.ProductInput{
		Name:      t.Name,
		SKU:       t.SKU,
		Category:  t.Category,
		BuyPrice:  client.Decimal(buy),
		SellPrice: client.Decimal(sell),
		Stock:     atoiOr(t.Stock, 0),
	}, nil
}

// Reset empties every field.
func (d *ProductDraft) Reset() {
	*d = ProductDraft{}
}

func (d ProductDraft) trimmed() ProductDraft {
	return ProductDraft{
		Name:      strings.TrimSpace(d.Name),
		SKU:       strings.TrimSpace(d.SKU),
		Category:  strings.TrimSpace(d.Category),
		BuyPrice:  strings.TrimSpace(d.BuyPrice),
		SellPrice: strings.TrimSpace(d.SellPrice),
		Stock:     strings.TrimSpace(d.Stock),
	}
}
