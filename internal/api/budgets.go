package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Budgets lists budget records, optionally narrowed to a month
// ("YYYY-MM-01") and/or a category id (0 means any).
func (c *Client) Budgets(ctx context.Context, month string, categoryID int) ([]BudgetRecord, error) {
	q := url.Values{}
	if month != "" {
		q.Set("month", month)
	}
	if categoryID > 0 {
		q.Set("category", strconv.Itoa(categoryID))
	}
	path := "/api/budgets/"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var recs []BudgetRecord
	if err := c.do(ctx, "GET", path, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CreateBudget adds a budget record for a (category, month) pair.
func (c *Client) CreateBudget(ctx context.Context, w BudgetWrite) (BudgetRecord, error) {
	var created BudgetRecord
	err := c.do(ctx, "POST", "/api/budgets/", w, &created)
	return created, err
}

// UpdateBudget replaces an existing budget record.
func (c *Client) UpdateBudget(ctx context.Context, id int, w BudgetWrite) (BudgetRecord, error) {
	var updated BudgetRecord
	err := c.do(ctx, "PUT", fmt.Sprintf("/api/budgets/%d/", id), w, &updated)
	return updated, err
}
