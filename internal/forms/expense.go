package forms

import (
	"strings"

	"github.com/biz-dashboard/tui/internal/client"
)

// ExpenseDraft is the expenses page create form. Date is YYYY-MM-DD.
type ExpenseDraft struct {
	Category string `validate:"required"`
	Amount   string `validate:"required,money,positive"`
	Date     string `validate:"required,datetime=2006-01-02"`
	Note     string
}

var expenseMessages = messages{
	"Category.required": "Category, amount and date are required",
	"Amount.required":   "Category, amount and date are required",
	"Date.required":     "Category, amount and date are required",
	"Amount":            "Amount must be a positive number",
	"Date":              "Date must be YYYY-MM-DD",
}

func (d ExpenseDraft) Validate() error {
	return check(d.trimmed(), expenseMessages)
}

// Payload validates and coerces the draft into the API body.
func (d ExpenseDraft) Payload() (client.ExpenseInput, error) {
	t := d.trimmed()
	if err := check(t, expenseMessages); err != nil {
		return client.ExpenseInput{}, err
	}
	amount, _ := parseMoney(t.Amount)
	return client.ExpenseInput{
		Category: t.Category,
		Amount:   client.Decimal(amount),
		Date:     t.Date,
		Note:     t.Note,
	}, nil
}

func (d *ExpenseDraft) Reset() {
	*d = ExpenseDraft{}
}

func (d ExpenseDraft) trimmed() ExpenseDraft {
	return ExpenseDraft{
		Category: strings.TrimSpace(d.Category),
		Amount:   strings.TrimSpace(d.Amount),
		Date:     strings.TrimSpace(d.Date),
		Note:     strings.TrimSpace(d.Note),
	}
}
