package api

import "testing"

func TestQueryEncodeOrderAndOmissions(t *testing.T) {
	q := TransactionQuery{Page: 2, Ordering: "-amount", MinAmount: 50}
	got := q.Encode()
	want := "page=2&ordering=-amount&min_amount=50"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestQueryEncodeAllFields(t *testing.T) {
	q := TransactionQuery{
		Page:      3,
		Ordering:  "date",
		Category:  7,
		MinAmount: 10.5,
		MaxAmount: 4000,
		StartDate: "2024-01-01",
		EndDate:   "2024-06-30",
	}
	got := q.Encode()
	want := "page=3&ordering=date&category=7&min_amount=10.5&max_amount=4000&start_date=2024-01-01&end_date=2024-06-30"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestQueryEncodeDefaultsPageToOne(t *testing.T) {
	got := TransactionQuery{}.Encode()
	if got != "page=1" {
		t.Errorf("Encode() = %q, want %q", got, "page=1")
	}
}
