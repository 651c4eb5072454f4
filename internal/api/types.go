package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value. The backend serializes decimals as JSON
// strings ("1250.00"); Amount accepts both that and a bare number, and
// always writes back a 2-decimal string.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.NewFromFloat(float64(a)).StringFixed(2))
}

// Category types as the backend spells them.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Category is a user-defined income or expense bucket.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Color string `json:"category_color"`
}

// BudgetRecord ties one category to one calendar month. Month is a
// first-of-month date, "2006-01-02" wire format.
type BudgetRecord struct {
	ID       int    `json:"id"`
	Category int    `json:"category"`
	Month    string `json:"month"`
	Amount   Amount `json:"amount"`
}

// BudgetWrite is the create/replace payload for a budget record.
type BudgetWrite struct {
	Category int    `json:"category"`
	Month    string `json:"month"`
	Amount   Amount `json:"amount"`
}

// Transaction is an income or expense row; the two resources share a shape.
// Category is zero when the backend nulled it out.
type Transaction struct {
	ID       int    `json:"id"`
	Amount   Amount `json:"amount"`
	Category int    `json:"category"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
}

// TransactionPage is one page of a paginated listing.
type TransactionPage struct {
	Count    int           `json:"count"`
	Next     string        `json:"next"`
	Previous string        `json:"previous"`
	Results  []Transaction `json:"results"`
}

// PageSize is the backend's fixed page size for transaction listings.
const PageSize = 10

// TotalPages converts a result count into a page count.
func (p TransactionPage) TotalPages() int {
	if p.Count <= 0 {
		return 1
	}
	return (p.Count + PageSize - 1) / PageSize
}
