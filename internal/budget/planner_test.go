package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/bitsandpieces/bitstui/internal/api"
)

// fakeBackend records writes and serves canned existence probes.
type fakeBackend struct {
	existing map[string]api.BudgetRecord // "month/category" -> record
	probeErr error
	writeErr error

	probes  int
	creates []api.BudgetWrite
	updates map[int]api.BudgetWrite
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		existing: map[string]api.BudgetRecord{},
		updates:  map[int]api.BudgetWrite{},
	}
}

func (f *fakeBackend) key(month string, categoryID int) string {
	return fmt.Sprintf("%s/%d", month, categoryID)
}

func (f *fakeBackend) Budgets(_ context.Context, month string, categoryID int) ([]api.BudgetRecord, error) {
	f.probes++
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	if rec, ok := f.existing[f.key(month, categoryID)]; ok {
		return []api.BudgetRecord{rec}, nil
	}
	return nil, nil
}

func (f *fakeBackend) CreateBudget(_ context.Context, w api.BudgetWrite) (api.BudgetRecord, error) {
	if f.writeErr != nil {
		return api.BudgetRecord{}, f.writeErr
	}
	f.creates = append(f.creates, w)
	return api.BudgetRecord{ID: 100 + len(f.creates), Category: w.Category, Month: w.Month, Amount: w.Amount}, nil
}

func (f *fakeBackend) UpdateBudget(_ context.Context, id int, w api.BudgetWrite) (api.BudgetRecord, error) {
	if f.writeErr != nil {
		return api.BudgetRecord{}, f.writeErr
	}
	f.updates[id] = w
	return api.BudgetRecord{ID: id, Category: w.Category, Month: w.Month, Amount: w.Amount}, nil
}

func (f *fakeBackend) writeCount() int { return len(f.creates) + len(f.updates) }

func plannerWith(t *testing.T, records []api.BudgetRecord, backend *fakeBackend) *Planner {
	t.Helper()
	return NewPlanner(records, testCatalog, backend, nil)
}

func TestRescaleProportional(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
		{ID: 2, Category: 2, Month: "2024-03-01", Amount: 300},
	}
	backend.existing[backend.key("2024-03-01", 1)] = records[0]
	backend.existing[backend.key("2024-03-01", 2)] = records[1]
	p := plannerWith(t, records, backend)

	if err := p.Rescale(context.Background(), 200); err != nil {
		t.Fatalf("Rescale: %v", err)
	}

	cur := p.View().Current
	if !almostEqual(cur.Categories[0].Budget, 50) {
		t.Errorf("category A = %v, want 50", cur.Categories[0].Budget)
	}
	if !almostEqual(cur.Categories[1].Budget, 150) {
		t.Errorf("category B = %v, want 150", cur.Categories[1].Budget)
	}
	// the total is the caller's value verbatim, not the re-summed shares
	if cur.TotalBudget != 200 {
		t.Errorf("total = %v, want exactly 200", cur.TotalBudget)
	}
	if len(backend.updates) != 2 {
		t.Errorf("expected 2 remote updates, got %d", len(backend.updates))
	}
}

func TestRescaleKeepsCallerTotalDespiteRoundingDrift(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 10},
		{ID: 2, Category: 2, Month: "2024-03-01", Amount: 10},
		{ID: 3, Category: 4, Month: "2024-03-01", Amount: 10},
	}
	p := plannerWith(t, records, backend)

	if err := p.Rescale(context.Background(), 100); err != nil {
		t.Fatalf("Rescale: %v", err)
	}
	cur := p.View().Current
	sum := 0.0
	for _, line := range cur.Categories {
		if !almostEqual(line.Budget, 33.33) {
			t.Errorf("%s = %v, want 33.33", line.Name, line.Budget)
		}
		sum += line.Budget
	}
	if cur.TotalBudget != 100 {
		t.Errorf("total = %v, want exactly 100", cur.TotalBudget)
	}
	if almostEqual(sum, cur.TotalBudget) {
		t.Error("expected rounding drift between share sum and total")
	}
}

func TestRescaleZeroTotalIsNoOp(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 0},
		{ID: 2, Category: 2, Month: "2024-03-01", Amount: 0},
	}
	p := plannerWith(t, records, backend)

	if err := p.Rescale(context.Background(), 500); !errors.Is(err, ErrZeroTotal) {
		t.Fatalf("err = %v, want ErrZeroTotal", err)
	}
	cur := p.View().Current
	if cur.TotalBudget != 0 || cur.Categories[0].Budget != 0 {
		t.Errorf("state changed on rejected rescale: %+v", cur)
	}
	if backend.probes != 0 || backend.writeCount() != 0 {
		t.Error("rejected rescale must not touch the backend")
	}
}

func TestSetCategoryAmountResumsTotal(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
		{ID: 2, Category: 2, Month: "2024-03-01", Amount: 300},
	}
	backend.existing[backend.key("2024-03-01", 1)] = records[0]
	p := plannerWith(t, records, backend)

	if err := p.SetCategoryAmount(context.Background(), 1, 250); err != nil {
		t.Fatalf("SetCategoryAmount: %v", err)
	}
	cur := p.View().Current
	if !almostEqual(cur.TotalBudget, 550) {
		t.Errorf("total = %v, want 550", cur.TotalBudget)
	}
	w, ok := backend.updates[1]
	if !ok {
		t.Fatal("expected an update of record 1")
	}
	if w.Month != "2024-03-01" || !almostEqual(float64(w.Amount), 250) {
		t.Errorf("update payload = %+v", w)
	}
}

func TestSetCategoryAmountCreatesWhenAbsent(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	if err := p.SetCategoryAmount(context.Background(), 1, 80); err != nil {
		t.Fatalf("SetCategoryAmount: %v", err)
	}
	if len(backend.creates) != 1 {
		t.Fatalf("creates = %+v", backend.creates)
	}
	if backend.creates[0].Category != 1 || backend.creates[0].Month != "2024-03-01" {
		t.Errorf("create payload = %+v", backend.creates[0])
	}
}

func TestAddCategory(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	if err := p.AddCategory(context.Background(), "Transport", 60); err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	cur := p.View().Current
	if len(cur.Categories) != 2 || cur.Categories[1].Name != "Transport" {
		t.Errorf("categories = %+v", cur.Categories)
	}
	if !almostEqual(cur.TotalBudget, 160) {
		t.Errorf("total = %v, want 160", cur.TotalBudget)
	}
	if len(backend.creates) != 1 {
		t.Errorf("creates = %+v", backend.creates)
	}
}

func TestAddCategoryRejectsDuplicate(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	err := p.AddCategory(context.Background(), "Groceries", 50)
	if !errors.Is(err, ErrDuplicateCategory) {
		t.Fatalf("err = %v, want ErrDuplicateCategory", err)
	}
	cur := p.View().Current
	if len(cur.Categories) != 1 || !almostEqual(cur.TotalBudget, 100) {
		t.Errorf("state changed on rejected add: %+v", cur)
	}
	if backend.probes != 0 || backend.writeCount() != 0 {
		t.Error("rejected add must not touch the backend")
	}
}

func TestAddCategoryRejectsUnknownWithSuggestion(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	err := p.AddCategory(context.Background(), "Transprot", 50)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
	var unknown *UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %T, want UnknownCategoryError", err)
	}
	if unknown.Suggestion != "Transport" {
		t.Errorf("suggestion = %q, want Transport", unknown.Suggestion)
	}
	if backend.probes != 0 || backend.writeCount() != 0 {
		t.Error("rejected add must not touch the backend")
	}
}

func TestAddCategoryRejectsIncomeType(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	// Salary exists but is an income category, so budgets cannot target it
	if err := p.AddCategory(context.Background(), "Salary", 50); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("err = %v, want ErrUnknownCategory", err)
	}
}

func TestUpsertFailureKeepsLocalState(t *testing.T) {
	backend := newFakeBackend()
	backend.probeErr = errors.New("backend down")
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	if err := p.SetCategoryAmount(context.Background(), 1, 999); err != nil {
		t.Fatalf("SetCategoryAmount returned %v; remote failures must not surface", err)
	}
	cur := p.View().Current
	if !almostEqual(cur.Categories[0].Budget, 999) {
		t.Errorf("optimistic local state lost: %+v", cur.Categories[0])
	}
	if backend.writeCount() != 0 {
		t.Error("no write should have happened after a failed probe")
	}
}

func TestMutationsOnEmptyView(t *testing.T) {
	backend := newFakeBackend()
	p := plannerWith(t, nil, backend)

	if err := p.Rescale(context.Background(), 100); !errors.Is(err, ErrEmptyView) {
		t.Errorf("Rescale err = %v, want ErrEmptyView", err)
	}
	if err := p.AddCategory(context.Background(), "Groceries", 10); !errors.Is(err, ErrEmptyView) {
		t.Errorf("AddCategory err = %v, want ErrEmptyView", err)
	}
	if err := p.SetCategoryAmount(context.Background(), 1, 10); !errors.Is(err, ErrEmptyView) {
		t.Errorf("SetCategoryAmount err = %v, want ErrEmptyView", err)
	}
}

func TestOverlappingEditsKeepTotalConsistent(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
		{ID: 2, Category: 2, Month: "2024-03-01", Amount: 300},
	}
	p := plannerWith(t, records, backend)

	// Submissions come from separate goroutines when two form submits
	// overlap; the planner must serialize them.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := 1 + n%2
			if err := p.SetCategoryAmount(context.Background(), id, float64(10+n)); err != nil {
				t.Errorf("SetCategoryAmount(%d): %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	cur := p.View().Current
	sum := 0.0
	for _, line := range cur.Categories {
		sum += line.Budget
	}
	if !almostEqual(cur.TotalBudget, sum) {
		t.Errorf("total = %v, categories sum to %v", cur.TotalBudget, sum)
	}
}

func TestViewSnapshotIsIndependent(t *testing.T) {
	backend := newFakeBackend()
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
	}
	p := plannerWith(t, records, backend)

	before := p.View()
	if err := p.SetCategoryAmount(context.Background(), 1, 250); err != nil {
		t.Fatalf("SetCategoryAmount: %v", err)
	}
	if !almostEqual(before.Current.Categories[0].Budget, 100) {
		t.Errorf("earlier snapshot mutated: %+v", before.Current.Categories[0])
	}
	if !almostEqual(p.View().Current.Categories[0].Budget, 250) {
		t.Errorf("edit lost: %+v", p.View().Current.Categories[0])
	}
}
