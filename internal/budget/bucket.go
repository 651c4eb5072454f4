// Package budget turns the backend's flat budget records into a navigable
// month-by-month view and keeps the editable month consistent with the
// backend under edits, additions and proportional rescaling.
package budget

import (
	"fmt"
	"sort"
	"time"

	"github.com/bitsandpieces/bitstui/internal/api"
)

const (
	monthWire  = "2006-01-02"   // first-of-month date key on the wire
	monthLabel = "January 2006" // human-readable bucket label
)

// Line is one category's slice of a month bucket.
type Line struct {
	CategoryID int
	Name       string
	Budget     float64
}

// Bucket is one month's view of the budget data.
type Bucket struct {
	Month       string // label, e.g. "March 2024"
	Categories  []Line
	TotalBudget float64
}

// View is the full bucketed picture: index 0 is the editable current month
// (the latest month present in the data), the rest is read-only history,
// most recent first.
type View struct {
	Current Bucket
	History []Bucket
}

// BuildView buckets raw records by month. Records referencing a category
// missing from the catalog get a placeholder name rather than being
// dropped. An empty record list yields an empty view.
func BuildView(records []api.BudgetRecord, catalog []api.Category) View {
	if len(records) == 0 {
		return View{}
	}

	names := make(map[int]string, len(catalog))
	for _, c := range catalog {
		names[c.ID] = c.Name
	}

	byMonth := make(map[string][]api.BudgetRecord)
	for _, r := range records {
		byMonth[r.Month] = append(byMonth[r.Month], r)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	// raw keys are YYYY-MM-01, so a lexicographic sort is a calendar sort
	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	buckets := make([]Bucket, 0, len(months))
	for _, m := range months {
		b := Bucket{Month: labelForMonth(m)}
		for _, r := range byMonth[m] {
			name, ok := names[r.Category]
			if !ok {
				name = fmt.Sprintf("Category %d", r.Category)
			}
			b.Categories = append(b.Categories, Line{
				CategoryID: r.Category,
				Name:       name,
				Budget:     float64(r.Amount),
			})
			b.TotalBudget += float64(r.Amount)
		}
		buckets = append(buckets, b)
	}

	return View{Current: buckets[0], History: buckets[1:]}
}

// Months returns every bucket label, current first.
func (v View) Months() []string {
	if v.Current.Month == "" {
		return nil
	}
	out := []string{v.Current.Month}
	for _, h := range v.History {
		out = append(out, h.Month)
	}
	return out
}

// Bucket returns the bucket at index (0 = current). The boolean is false
// out of range; navigation disables at the boundary instead of panicking.
func (v View) Bucket(i int) (Bucket, bool) {
	switch {
	case v.Current.Month == "" || i < 0:
		return Bucket{}, false
	case i == 0:
		return v.Current, true
	case i <= len(v.History):
		return v.History[i-1], true
	default:
		return Bucket{}, false
	}
}

// CanOlder reports whether navigation can move from index i toward history.
func (v View) CanOlder(i int) bool { return i < len(v.History) }

// CanNewer reports whether navigation can move from index i toward current.
func (v View) CanNewer(i int) bool { return i > 0 }

func labelForMonth(raw string) string {
	t, err := time.Parse(monthWire, raw)
	if err != nil {
		return raw
	}
	return t.Format(monthLabel)
}

// MonthKey rebuilds the wire month key ("2024-03-01") from a bucket label
// ("March 2024").
func MonthKey(label string) (string, error) {
	t, err := time.Parse(monthLabel, label)
	if err != nil {
		return "", fmt.Errorf("parse month label %q: %w", label, err)
	}
	return t.Format(monthWire), nil
}
