// Package dashboard computes the financial-health snapshot for the current
// month and the trailing six months from the backend's four collections.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bitsandpieces/bitstui/internal/api"
)

// CategorySpend pairs an expense category's budget with what was actually
// spent this month.
type CategorySpend struct {
	Name   string
	Budget float64
	Actual float64
}

// MonthPoint is one month in the six-month comparison series.
type MonthPoint struct {
	Label   string // "Jan"
	Income  float64
	Expense float64
	Budget  float64
}

// FeedItem is one row of the recent-transactions feed.
type FeedItem struct {
	ID       int
	Kind     string // "income" or "expense"
	Category string
	Amount   float64
	Date     string
	Notes    string
}

// Snapshot is the fully derived dashboard state.
type Snapshot struct {
	Month          string // current month label, "March 2024"
	MonthlyIncome  float64
	MonthlyExpense float64
	MonthlyBudget  float64
	OverallBalance float64
	Categories     []CategorySpend
	Series         []MonthPoint // oldest first, ending at the current month
	Recent         []FeedItem   // at most recentFeedSize entries
}

const (
	seriesMonths   = 6
	recentFeedSize = 8
)

// Data is everything Compute needs, fetched upstream.
type Data struct {
	Categories []api.Category
	Budgets    []api.BudgetRecord // current month only
	Incomes    []api.Transaction
	Expenses   []api.Transaction
	// MonthBudgets maps wire month keys ("2024-03-01") to that month's
	// budget total, for the series.
	MonthBudgets map[string]float64
}

// Compute derives the snapshot. Pure: no fetching, no clock reads beyond
// the now argument.
func Compute(d Data, now time.Time) Snapshot {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthPrefix := monthStart.Format("2006-01")

	s := Snapshot{Month: monthStart.Format("January 2006")}

	for _, rec := range d.Budgets {
		s.MonthlyBudget += float64(rec.Amount)
	}

	totalIncome, totalExpense := 0.0, 0.0
	for _, tx := range d.Incomes {
		totalIncome += float64(tx.Amount)
		if strings.HasPrefix(tx.Date, monthPrefix) {
			s.MonthlyIncome += float64(tx.Amount)
		}
	}
	for _, tx := range d.Expenses {
		totalExpense += float64(tx.Amount)
		if strings.HasPrefix(tx.Date, monthPrefix) {
			s.MonthlyExpense += float64(tx.Amount)
		}
	}
	s.OverallBalance = totalIncome - totalExpense

	budgetByCategory := make(map[int]float64, len(d.Budgets))
	for _, rec := range d.Budgets {
		budgetByCategory[rec.Category] += float64(rec.Amount)
	}
	spendByCategory := make(map[int]float64)
	for _, tx := range d.Expenses {
		if strings.HasPrefix(tx.Date, monthPrefix) {
			spendByCategory[tx.Category] += float64(tx.Amount)
		}
	}
	for _, cat := range d.Categories {
		if cat.Type != api.TypeExpense {
			continue
		}
		s.Categories = append(s.Categories, CategorySpend{
			Name:   cat.Name,
			Budget: budgetByCategory[cat.ID],
			Actual: spendByCategory[cat.ID],
		})
	}

	for i := seriesMonths - 1; i >= 0; i-- {
		m := monthStart.AddDate(0, -i, 0)
		prefix := m.Format("2006-01")
		point := MonthPoint{
			Label:  m.Format("Jan"),
			Budget: d.MonthBudgets[m.Format("2006-01-02")],
		}
		for _, tx := range d.Incomes {
			if strings.HasPrefix(tx.Date, prefix) {
				point.Income += float64(tx.Amount)
			}
		}
		for _, tx := range d.Expenses {
			if strings.HasPrefix(tx.Date, prefix) {
				point.Expense += float64(tx.Amount)
			}
		}
		s.Series = append(s.Series, point)
	}

	s.Recent = recentFeed(d, recentFeedSize)
	return s
}

// recentFeed merges incomes and expenses, tags each with its resolved
// category name, newest first, capped at limit.
func recentFeed(d Data, limit int) []FeedItem {
	names := make(map[int]string, len(d.Categories))
	for _, c := range d.Categories {
		names[c.ID] = c.Name
	}
	resolve := func(id int, fallback string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return fallback
	}

	feed := make([]FeedItem, 0, len(d.Incomes)+len(d.Expenses))
	for _, tx := range d.Incomes {
		feed = append(feed, FeedItem{
			ID:       tx.ID,
			Kind:     "income",
			Category: resolve(tx.Category, "Income"),
			Amount:   float64(tx.Amount),
			Date:     tx.Date,
			Notes:    tx.Notes,
		})
	}
	for _, tx := range d.Expenses {
		feed = append(feed, FeedItem{
			ID:       tx.ID,
			Kind:     "expense",
			Category: resolve(tx.Category, "Expense"),
			Amount:   float64(tx.Amount),
			Date:     tx.Date,
			Notes:    tx.Notes,
		})
	}
	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date > feed[j].Date })
	if len(feed) > limit {
		feed = feed[:limit]
	}
	return feed
}

// Backend is the slice of the API client the loader reads through.
type Backend interface {
	Categories(ctx context.Context, typ string) ([]api.Category, error)
	Budgets(ctx context.Context, month string, categoryID int) ([]api.BudgetRecord, error)
	AllTransactions(ctx context.Context, kind api.Kind) ([]api.Transaction, error)
}

// Load fetches everything and computes the snapshot. The four base
// collections load concurrently; any failure aborts the whole snapshot.
// There is no partial dashboard.
func Load(ctx context.Context, b Backend, now time.Time) (Snapshot, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var d Data
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.Categories, err = b.Categories(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		d.Budgets, err = b.Budgets(gctx, monthStart.Format("2006-01-02"), 0)
		return err
	})
	g.Go(func() error {
		var err error
		d.Incomes, err = b.AllTransactions(gctx, api.Incomes)
		return err
	})
	g.Go(func() error {
		var err error
		d.Expenses, err = b.AllTransactions(gctx, api.Expenses)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("load dashboard: %w", err)
	}

	// per-month budget totals for the series, fetched independently
	totals := make([]float64, seriesMonths)
	sg, sctx := errgroup.WithContext(ctx)
	for i := 0; i < seriesMonths; i++ {
		sg.Go(func() error {
			key := monthStart.AddDate(0, -i, 0).Format("2006-01-02")
			recs, err := b.Budgets(sctx, key, 0)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				totals[i] += float64(rec.Amount)
			}
			return nil
		})
	}
	if err := sg.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("load dashboard: %w", err)
	}
	d.MonthBudgets = make(map[string]float64, seriesMonths)
	for i := 0; i < seriesMonths; i++ {
		d.MonthBudgets[monthStart.AddDate(0, -i, 0).Format("2006-01-02")] = totals[i]
	}

	return Compute(d, now), nil
}
