package budget

import (
	"math"
	"testing"

	"github.com/bitsandpieces/bitstui/internal/api"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

var testCatalog = []api.Category{
	{ID: 1, Name: "Groceries", Type: "expense", Color: "#FF5733"},
	{ID: 2, Name: "Rent", Type: "expense", Color: "#4F46E5"},
	{ID: 3, Name: "Salary", Type: "income", Color: "#10B981"},
	{ID: 4, Name: "Transport", Type: "expense", Color: "#F59E0B"},
}

func sampleRecords() []api.BudgetRecord {
	return []api.BudgetRecord{
		{ID: 10, Category: 1, Month: "2024-03-01", Amount: 500},
		{ID: 11, Category: 2, Month: "2024-03-01", Amount: 1200},
		{ID: 12, Category: 1, Month: "2024-02-01", Amount: 450},
		{ID: 13, Category: 2, Month: "2024-02-01", Amount: 1200},
		{ID: 14, Category: 1, Month: "2024-01-01", Amount: 400},
	}
}

func TestBuildViewBucketsAndTotals(t *testing.T) {
	v := BuildView(sampleRecords(), testCatalog)

	if v.Current.Month != "March 2024" {
		t.Errorf("current month = %q, want March 2024", v.Current.Month)
	}
	if len(v.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(v.History))
	}
	if v.History[0].Month != "February 2024" || v.History[1].Month != "January 2024" {
		t.Errorf("history order = %q, %q", v.History[0].Month, v.History[1].Month)
	}

	if !almostEqual(v.Current.TotalBudget, 1700) {
		t.Errorf("current total = %v, want 1700", v.Current.TotalBudget)
	}
	for _, b := range append([]Bucket{v.Current}, v.History...) {
		sum := 0.0
		for _, line := range b.Categories {
			sum += line.Budget
		}
		if !almostEqual(sum, b.TotalBudget) {
			t.Errorf("%s: total %v != category sum %v", b.Month, b.TotalBudget, sum)
		}
	}
}

func TestBuildViewEmptyInput(t *testing.T) {
	v := BuildView(nil, testCatalog)
	if v.Current.Month != "" || len(v.History) != 0 {
		t.Errorf("empty input should yield empty view, got %+v", v)
	}
	if got := v.Months(); got != nil {
		t.Errorf("Months() = %v, want nil", got)
	}
}

func TestBuildViewUnknownCategoryPlaceholder(t *testing.T) {
	records := []api.BudgetRecord{
		{ID: 1, Category: 99, Month: "2024-03-01", Amount: 75},
	}
	v := BuildView(records, testCatalog)
	if len(v.Current.Categories) != 1 {
		t.Fatalf("categories = %+v", v.Current.Categories)
	}
	if v.Current.Categories[0].Name != "Category 99" {
		t.Errorf("placeholder name = %q", v.Current.Categories[0].Name)
	}
}

func TestBucketIndexing(t *testing.T) {
	v := BuildView(sampleRecords(), testCatalog)

	if b, ok := v.Bucket(0); !ok || b.Month != "March 2024" {
		t.Errorf("Bucket(0) = %+v, %v", b, ok)
	}
	if b, ok := v.Bucket(2); !ok || b.Month != "January 2024" {
		t.Errorf("Bucket(2) = %+v, %v", b, ok)
	}
	if _, ok := v.Bucket(3); ok {
		t.Error("Bucket(3) should be out of range")
	}
	if _, ok := v.Bucket(-1); ok {
		t.Error("Bucket(-1) should be out of range")
	}
}

func TestNavigationBoundaries(t *testing.T) {
	v := BuildView(sampleRecords(), testCatalog)

	if !v.CanOlder(0) || !v.CanNewer(1) {
		t.Error("interior navigation should be allowed")
	}
	if v.CanNewer(0) {
		t.Error("cannot move newer than current")
	}
	if v.CanOlder(2) {
		t.Error("cannot move older than the oldest month")
	}
}

func TestMonthKeyRoundTrip(t *testing.T) {
	key, err := MonthKey("March 2024")
	if err != nil {
		t.Fatalf("MonthKey: %v", err)
	}
	if key != "2024-03-01" {
		t.Errorf("key = %q, want 2024-03-01", key)
	}
	if _, err := MonthKey("not a month"); err == nil {
		t.Error("bad label should fail")
	}
}
