package tui

import (
	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/budget"
	"github.com/bitsandpieces/bitstui/internal/dashboard"
	"github.com/bitsandpieces/bitstui/internal/session"
)

// Loader results carry the generation counter of the request that
// produced them. The app drops any result whose generation no longer
// matches the view's current one, so a slow response cannot overwrite
// the state of a newer request.

type errMsg struct{ error }

type statusMsg string

// authDoneMsg reports a successful login or registration.
type authDoneMsg struct {
	sess session.Session
}

type dashLoadedMsg struct {
	gen  int
	snap dashboard.Snapshot
}

type budgetLoadedMsg struct {
	gen     int
	planner *budget.Planner
}

// budgetSavedMsg carries the refreshed view after a mutation ran
// against the planner.
type budgetSavedMsg struct {
	gen  int
	view budget.View
	note string
}

type txPageMsg struct {
	gen  int
	kind api.Kind
	page api.TransactionPage
}

type txCreatedMsg struct {
	gen int
}

type categoriesMsg struct {
	gen      int
	expenses []api.Category
	incomes  []api.Category
}

type categorySavedMsg struct {
	gen  int
	note string
}
