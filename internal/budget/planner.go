package budget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"

	"github.com/bitsandpieces/bitstui/internal/api"
)

// Sentinel failures for local validation; none of them issue remote calls.
var (
	ErrZeroTotal         = errors.New("current total is zero, cannot rescale")
	ErrDuplicateCategory = errors.New("category already budgeted this month")
	ErrUnknownCategory   = errors.New("no such expense category")
	ErrEmptyView         = errors.New("no budget data loaded")
)

// UnknownCategoryError decorates ErrUnknownCategory with the rejected name
// and, when a close match exists, a suggestion.
type UnknownCategoryError struct {
	Name       string
	Suggestion string
}

func (e *UnknownCategoryError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("no expense category named %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("no expense category named %q", e.Name)
}

func (e *UnknownCategoryError) Unwrap() error { return ErrUnknownCategory }

// Upserter is the slice of the API client the planner writes through.
type Upserter interface {
	Budgets(ctx context.Context, month string, categoryID int) ([]api.BudgetRecord, error)
	CreateBudget(ctx context.Context, w api.BudgetWrite) (api.BudgetRecord, error)
	UpdateBudget(ctx context.Context, id int, w api.BudgetWrite) (api.BudgetRecord, error)
}

// Planner owns the editable current-month bucket. Mutations apply locally
// first and then write through to the backend; a failed write is logged
// and never rolls the local state back. Best effort, at most once.
//
// Mutations run off the update loop, so the whole struct is guarded by mu.
// Overlapping submissions serialize; the second one sees the first one's
// local state.
type Planner struct {
	mu      sync.Mutex
	view    View
	catalog []api.Category
	backend Upserter
	log     *logrus.Entry
}

// NewPlanner buckets records and wires the write path.
func NewPlanner(records []api.BudgetRecord, catalog []api.Category, backend Upserter, log *logrus.Logger) *Planner {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Planner{
		view:    BuildView(records, catalog),
		catalog: catalog,
		backend: backend,
		log:     log.WithField("component", "budget"),
	}
}

// View returns a snapshot of the bucketed state. The current month's lines
// are copied so the caller never shares a slice the planner keeps editing.
func (p *Planner) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.view
	v.Current.Categories = append([]Line(nil), p.view.Current.Categories...)
	return v
}

// SetCategoryAmount replaces one category's budget in the current month and
// re-sums the total. History months are never editable; callers only reach
// this for index 0.
func (p *Planner) SetCategoryAmount(ctx context.Context, categoryID int, amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Current.Month == "" {
		return ErrEmptyView
	}
	found := false
	total := 0.0
	for i, line := range p.view.Current.Categories {
		if line.CategoryID == categoryID {
			p.view.Current.Categories[i].Budget = amount
			found = true
		}
		total += p.view.Current.Categories[i].Budget
	}
	if !found {
		return &UnknownCategoryError{Name: fmt.Sprintf("id %d", categoryID)}
	}
	p.view.Current.TotalBudget = total

	p.upsert(ctx, categoryID, amount)
	return nil
}

// AddCategory appends a category to the current month. The name must
// resolve to an existing expense-type category that is not already present.
func (p *Planner) AddCategory(ctx context.Context, name string, amount float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Current.Month == "" {
		return ErrEmptyView
	}
	cat, ok := p.findExpenseCategory(name)
	if !ok {
		return &UnknownCategoryError{Name: name, Suggestion: p.suggest(name)}
	}
	for _, line := range p.view.Current.Categories {
		if line.CategoryID == cat.ID {
			return ErrDuplicateCategory
		}
	}

	p.view.Current.Categories = append(p.view.Current.Categories, Line{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Budget:     amount,
	})
	p.view.Current.TotalBudget += amount

	p.upsert(ctx, cat.ID, amount)
	return nil
}

// Rescale redistributes the current month proportionally so the budgets
// line up with newTotal. Per-category shares are rounded to 2 decimals but
// TotalBudget takes the caller's value exactly; the small drift between
// the two is accepted. Every changed category is written independently, so
// a partial failure leaves a mixed remote state (logged, not undone).
func (p *Planner) Rescale(ctx context.Context, newTotal float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Current.Month == "" {
		return ErrEmptyView
	}
	oldTotal := 0.0
	for _, line := range p.view.Current.Categories {
		oldTotal += line.Budget
	}
	if oldTotal == 0 {
		return ErrZeroTotal
	}

	ratio := newTotal / oldTotal
	for i := range p.view.Current.Categories {
		p.view.Current.Categories[i].Budget = round2(p.view.Current.Categories[i].Budget * ratio)
	}
	p.view.Current.TotalBudget = newTotal

	for _, line := range p.view.Current.Categories {
		p.upsert(ctx, line.CategoryID, line.Budget)
	}
	return nil
}

// upsert probes for an existing (category, month) record and updates it,
// or creates one. Failures are logged and swallowed: the optimistic local
// state stands.
func (p *Planner) upsert(ctx context.Context, categoryID int, amount float64) {
	month, err := MonthKey(p.view.Current.Month)
	if err != nil {
		p.log.WithError(err).Error("cannot rebuild month key, skipping write")
		return
	}
	logger := p.log.WithFields(logrus.Fields{"category": categoryID, "month": month})

	existing, err := p.backend.Budgets(ctx, month, categoryID)
	if err != nil {
		logger.WithError(err).Warn("existence probe failed, budget not written")
		return
	}
	w := api.BudgetWrite{Category: categoryID, Month: month, Amount: api.Amount(amount)}
	if len(existing) > 0 {
		if _, err := p.backend.UpdateBudget(ctx, existing[0].ID, w); err != nil {
			logger.WithError(err).Warn("budget update failed")
		}
		return
	}
	if _, err := p.backend.CreateBudget(ctx, w); err != nil {
		logger.WithError(err).Warn("budget create failed")
	}
}

func (p *Planner) findExpenseCategory(name string) (api.Category, bool) {
	for _, c := range p.catalog {
		if c.Type == api.TypeExpense && strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return api.Category{}, false
}

// suggest picks the closest expense category name within a small edit
// distance, for the rejection message.
func (p *Planner) suggest(name string) string {
	best, bestDist := "", 4
	for _, c := range p.catalog {
		if c.Type != api.TypeExpense {
			continue
		}
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c.Name))
		if d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	return best
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
