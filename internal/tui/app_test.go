package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/budget"
	"github.com/bitsandpieces/bitstui/internal/config"
	"github.com/bitsandpieces/bitstui/internal/dashboard"
	"github.com/bitsandpieces/bitstui/internal/session"
)

func testApp(t *testing.T, sess session.Session) *App {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := api.New("http://127.0.0.1:9", time.Second, sess, nil)
	store := session.NewStoreAt(t.TempDir())
	cfg := config.Config{}
	cfg.UI.CurrencySymbol = "Rs."
	return New(context.Background(), cfg, client, store, log)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStartsAtLoginWithoutSession(t *testing.T) {
	a := testApp(t, session.Session{})
	if a.state != viewAuth {
		t.Fatalf("state = %q, want auth", a.state)
	}
}

func TestStartsAtDashboardWithSession(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok", Username: "maya"})
	if a.state != viewDashboard {
		t.Fatalf("state = %q, want dashboard", a.state)
	}
}

func TestAuthDonePersistsSessionAndRoutes(t *testing.T) {
	a := testApp(t, session.Session{})

	a.Update(authDoneMsg{sess: session.Session{Token: "tok", Username: "maya"}})

	if a.state != viewDashboard {
		t.Fatalf("state = %q, want dashboard", a.state)
	}
	got, err := a.store.Load()
	if err != nil {
		t.Fatalf("session not persisted: %v", err)
	}
	if got.Token != "tok" || got.Username != "maya" {
		t.Errorf("persisted session = %+v", got)
	}
}

func TestNumberKeysSwitchViews(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})

	a.Update(keyRunes("3"))
	if a.state != viewTransactions {
		t.Fatalf("after 3: state = %q", a.state)
	}
	a.Update(keyRunes("2"))
	if a.state != viewBudget {
		t.Fatalf("after 2: state = %q", a.state)
	}
	a.Update(keyRunes("4"))
	if a.state != viewCategories {
		t.Fatalf("after 4: state = %q", a.state)
	}
	a.Update(keyRunes("1"))
	if a.state != viewDashboard {
		t.Fatalf("after 1: state = %q", a.state)
	}
}

func TestTabCyclesViews(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})

	want := []appState{viewBudget, viewTransactions, viewCategories, viewDashboard}
	for _, w := range want {
		a.Update(tea.KeyMsg{Type: tea.KeyTab})
		if a.state != w {
			t.Fatalf("state = %q, want %q", a.state, w)
		}
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok", Username: "maya"})
	if err := a.store.Save(session.Session{Token: "tok", Username: "maya"}); err != nil {
		t.Fatal(err)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlL})

	if a.state != viewAuth {
		t.Fatalf("state = %q, want auth", a.state)
	}
	if a.client.Session().Token != "" {
		t.Error("client still has a token")
	}
	if _, err := a.store.Load(); err == nil {
		t.Error("session file still readable after logout")
	}
}

func TestStaleDashboardResponseDropped(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.dash.gen = 2

	a.Update(dashLoadedMsg{gen: 1, snap: dashboard.Snapshot{MonthlyIncome: 999}})
	if a.dash.loaded {
		t.Fatal("stale response must be dropped")
	}

	a.Update(dashLoadedMsg{gen: 2, snap: dashboard.Snapshot{MonthlyIncome: 42}})
	if !a.dash.loaded || a.dash.snap.MonthlyIncome != 42 {
		t.Fatalf("current response not applied: %+v", a.dash.snap)
	}
}

func TestStaleTransactionPageDropped(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.tx.gen = 5
	a.tx.kind = api.Expenses

	a.Update(txPageMsg{gen: 4, kind: api.Expenses, page: api.TransactionPage{Count: 99}})
	if a.tx.loaded {
		t.Fatal("stale page must be dropped")
	}

	// right kind and generation
	a.Update(txPageMsg{gen: 5, kind: api.Expenses, page: api.TransactionPage{Count: 7}})
	if !a.tx.loaded || a.tx.page.Count != 7 {
		t.Fatalf("page not applied: %+v", a.tx.page)
	}
}

func TestUnauthorizedForcesLogin(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})

	a.Update(errMsg{api.ErrUnauthorized})

	if a.state != viewAuth {
		t.Fatalf("state = %q, want auth", a.state)
	}
	if !a.isErr || a.status == "" {
		t.Error("expected an error status explaining the logout")
	}
}

func TestCreatedTransactionResetsToFirstPage(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.tx.query.Page = 4

	a.Update(txCreatedMsg{gen: a.tx.gen})

	if a.tx.query.Page != 1 {
		t.Fatalf("page = %d, want 1", a.tx.query.Page)
	}
}

func TestLoginValidationRequiresFields(t *testing.T) {
	a := testApp(t, session.Session{})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("empty form must not submit")
	}
	if !a.isErr {
		t.Error("expected a validation error")
	}
}

func TestRegisterValidationRejectsPasswordMismatch(t *testing.T) {
	a := testApp(t, session.Session{})
	a.auth.register = true
	a.auth.inputs[fieldUsername].SetValue("maya")
	a.auth.inputs[fieldEmail].SetValue("maya@example.com")
	a.auth.inputs[fieldPassword].SetValue("hunter22")
	a.auth.inputs[fieldConfirm].SetValue("hunter23")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("mismatched passwords must not submit")
	}
	if !a.isErr {
		t.Error("expected a validation error")
	}
}

func TestBudgetMonthNavigationStopsAtBounds(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.state = viewBudget

	catalog := []api.Category{{ID: 1, Name: "Groceries", Type: "expense"}}
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
		{ID: 2, Category: 1, Month: "2024-02-01", Amount: 90},
	}
	p := budget.NewPlanner(records, catalog, nil, nil)
	a.Update(budgetLoadedMsg{gen: a.bud.gen, planner: p})

	if !a.bud.loaded || a.bud.monthIdx != 0 {
		t.Fatalf("budget not loaded at current month: %+v", a.bud)
	}

	a.Update(tea.KeyMsg{Type: tea.KeyRight})
	if a.bud.monthIdx != 0 {
		t.Fatal("cannot go newer than the current month")
	}
	a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if a.bud.monthIdx != 1 {
		t.Fatalf("monthIdx = %d, want 1", a.bud.monthIdx)
	}
	a.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if a.bud.monthIdx != 1 {
		t.Fatal("cannot go older than the oldest bucket")
	}
}

func TestHistoryMonthRejectsEdits(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.state = viewBudget

	catalog := []api.Category{{ID: 1, Name: "Groceries", Type: "expense"}}
	records := []api.BudgetRecord{
		{ID: 1, Category: 1, Month: "2024-03-01", Amount: 100},
		{ID: 2, Category: 1, Month: "2024-02-01", Amount: 90},
	}
	a.Update(budgetLoadedMsg{gen: a.bud.gen, planner: budget.NewPlanner(records, catalog, nil, nil)})
	a.Update(tea.KeyMsg{Type: tea.KeyLeft}) // into history

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.bud.mode != budBrowse {
		t.Fatalf("mode = %q, history must stay read only", a.bud.mode)
	}
	a.Update(keyRunes("a"))
	if a.bud.mode != budBrowse {
		t.Fatal("add form must not open on a history month")
	}

	a.Update(tea.KeyMsg{Type: tea.KeyRight}) // back to current
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.bud.mode != budEdit {
		t.Fatalf("mode = %q, current month must be editable", a.bud.mode)
	}
}

func TestViewSwitchDropsInFlightResponses(t *testing.T) {
	a := testApp(t, session.Session{Token: "tok"})
	a.state = viewTransactions
	a.tx.loaded = true

	// a reload is dispatched, then the user flips the kind before the
	// response lands
	a.tx.gen++
	stale := txPageMsg{gen: a.tx.gen, kind: api.Expenses, page: api.TransactionPage{Count: 50}}
	a.Update(keyRunes("i")) // bumps gen and switches kind

	a.Update(stale)
	if a.tx.page.Count == 50 {
		t.Fatal("response from before the kind switch must be dropped")
	}
}
