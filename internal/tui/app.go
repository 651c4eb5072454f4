package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/config"
	"github.com/bitsandpieces/bitstui/internal/session"
)

// App routes between the login screen and the four main views. Every
// remote fetch goes through a view-local generation counter so a stale
// response is dropped instead of clobbering newer state.
type App struct {
	ctx    context.Context
	client *api.Client
	store  *session.Store
	cfg    config.Config
	log    *logrus.Logger
	now    func() time.Time

	state  appState
	width  int
	height int
	status string
	isErr  bool

	auth authModel
	dash dashModel
	bud  budModel
	tx   txModel
	cats catsModel
}

type appState string

const (
	viewAuth         appState = "auth"
	viewDashboard    appState = "dashboard"
	viewBudget       appState = "budget"
	viewTransactions appState = "transactions"
	viewCategories   appState = "categories"
)

var tabOrder = []appState{viewDashboard, viewBudget, viewTransactions, viewCategories}

func New(ctx context.Context, cfg config.Config, client *api.Client, store *session.Store, log *logrus.Logger) *App {
	if log == nil {
		log = logrus.New()
	}
	loc := time.Local
	if cfg.UI.Timezone != "" {
		if l, err := time.LoadLocation(cfg.UI.Timezone); err == nil {
			loc = l
		} else {
			log.WithError(err).Warn("bad ui.timezone, using local")
		}
	}
	a := &App{
		ctx:    ctx,
		client: client,
		store:  store,
		cfg:    cfg,
		log:    log,
		now:    func() time.Time { return time.Now().In(loc) },
		state:  viewAuth,
		auth:   newAuthModel(),
		tx:     newTxModel(),
		cats:   newCatsModel(),
	}
	if client.Session().Token != "" {
		a.state = viewDashboard
	}
	return a
}

func (a *App) Init() tea.Cmd {
	if a.state == viewDashboard {
		return a.dash.load(a)
	}
	return a.auth.focusCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, nil

	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.state == viewAuth {
			return a, a.auth.handleKey(a, m)
		}
		if !a.activeTyping() {
			switch m.String() {
			case "q":
				return a, tea.Quit
			case "ctrl+l":
				a.logout()
				return a, a.auth.focusCmd()
			case "1":
				return a, a.switchTo(viewDashboard)
			case "2":
				return a, a.switchTo(viewBudget)
			case "3":
				return a, a.switchTo(viewTransactions)
			case "4":
				return a, a.switchTo(viewCategories)
			case "tab":
				return a, a.switchTo(a.nextView())
			}
		}
		return a, a.routeKey(m)

	case authDoneMsg:
		if err := a.store.Save(m.sess); err != nil {
			a.log.WithError(err).Warn("persist session")
		}
		a.setStatus("signed in as "+m.sess.Username, false)
		a.state = viewDashboard
		return a, a.dash.load(a)

	case dashLoadedMsg:
		if m.gen != a.dash.gen {
			a.dropStale("dashboard")
			return a, nil
		}
		a.dash.apply(m)
		return a, nil
	case budgetLoadedMsg:
		if m.gen != a.bud.gen {
			a.dropStale("budget")
			return a, nil
		}
		a.bud.applyLoaded(m)
		return a, nil
	case budgetSavedMsg:
		if cmd := a.bud.applySaved(a, m); cmd != nil {
			return a, cmd
		}
		return a, nil
	case txPageMsg:
		if m.gen != a.tx.gen || m.kind != a.tx.kind {
			a.dropStale("transactions")
			return a, nil
		}
		a.tx.applyPage(m)
		return a, nil
	case txCreatedMsg:
		if m.gen != a.tx.gen {
			return a, nil
		}
		a.setStatus("transaction recorded", false)
		a.tx.query.Page = 1
		a.tx.cursor = 0
		return a, a.tx.load(a)
	case categoriesMsg:
		if m.gen != a.cats.gen {
			a.dropStale("categories")
			return a, nil
		}
		a.cats.apply(m)
		a.tx.setCatalog(m.expenses, m.incomes)
		return a, nil
	case categorySavedMsg:
		if m.gen != a.cats.gen {
			return a, nil
		}
		a.setStatus(m.note, false)
		return a, a.cats.load(a)

	case statusMsg:
		a.setStatus(string(m), false)
		return a, nil
	case errMsg:
		a.handleErr(m.error)
		return a, nil
	}
	return a, a.routeMsg(msg)
}

// routeKey forwards a key press to the active view.
func (a *App) routeKey(m tea.KeyMsg) tea.Cmd {
	switch a.state {
	case viewDashboard:
		return a.dash.handleKey(a, m)
	case viewBudget:
		return a.bud.handleKey(a, m)
	case viewTransactions:
		return a.tx.handleKey(a, m)
	case viewCategories:
		return a.cats.handleKey(a, m)
	}
	return nil
}

// routeMsg forwards non-key messages (textinput blink ticks) to
// whichever view is capturing input.
func (a *App) routeMsg(msg tea.Msg) tea.Cmd {
	if a.state == viewAuth {
		return a.auth.handleMsg(msg)
	}
	return nil
}

func (a *App) activeTyping() bool {
	switch a.state {
	case viewBudget:
		return a.bud.typing()
	case viewTransactions:
		return a.tx.typing()
	case viewCategories:
		return a.cats.typing()
	}
	return false
}

func (a *App) switchTo(state appState) tea.Cmd {
	if a.state == state {
		return nil
	}
	a.state = state
	a.status = ""
	switch state {
	case viewDashboard:
		return a.dash.load(a)
	case viewBudget:
		if !a.bud.loaded {
			return a.bud.load(a)
		}
	case viewTransactions:
		cmds := []tea.Cmd{}
		if !a.tx.loaded {
			cmds = append(cmds, a.tx.load(a))
		}
		if !a.cats.loaded {
			cmds = append(cmds, a.cats.load(a))
		}
		if len(cmds) > 0 {
			return tea.Batch(cmds...)
		}
	case viewCategories:
		if !a.cats.loaded {
			return a.cats.load(a)
		}
	}
	return nil
}

func (a *App) nextView() appState {
	for i, s := range tabOrder {
		if s == a.state {
			return tabOrder[(i+1)%len(tabOrder)]
		}
	}
	return viewDashboard
}

// logout drops the session everywhere and resets per-view state so the
// next account starts clean.
func (a *App) logout() {
	a.client.ClearSession()
	if err := a.store.Clear(); err != nil {
		a.log.WithError(err).Warn("clear session file")
	}
	a.dash = dashModel{}
	a.bud = budModel{}
	a.tx = newTxModel()
	a.cats = newCatsModel()
	a.auth = newAuthModel()
	a.state = viewAuth
	a.setStatus("signed out", false)
}

func (a *App) handleErr(err error) {
	if a.state == viewAuth {
		a.auth.busy = false
		a.log.WithError(err).Warn("sign-in failed")
		a.setStatus(err.Error(), true)
		return
	}
	if errors.Is(err, api.ErrUnauthorized) {
		a.logout()
		a.setStatus("session expired, sign in again", true)
		return
	}
	a.log.WithError(err).Error("view load failed")
	a.setStatus(err.Error(), true)
}

func (a *App) dropStale(view string) {
	a.log.WithField("view", view).Debug("dropped stale response")
}

func (a *App) setStatus(s string, isErr bool) {
	a.status = s
	a.isErr = isErr
}

func (a *App) View() string {
	if a.state == viewAuth {
		return a.auth.view(a)
	}
	var body string
	switch a.state {
	case viewBudget:
		body = a.bud.view(a)
	case viewTransactions:
		body = a.tx.view(a)
	case viewCategories:
		body = a.cats.view(a)
	default:
		body = a.dash.view(a)
	}
	out := a.renderTabs() + "\n\n" + body
	if a.status != "" {
		style := statusStyle
		if a.isErr {
			style = statusErrStyle
		}
		out += "\n" + style.Render(a.status)
	}
	return out
}

func (a *App) renderTabs() string {
	labels := map[appState]string{
		viewDashboard:    "1 Dashboard",
		viewBudget:       "2 Budget",
		viewTransactions: "3 Transactions",
		viewCategories:   "4 Categories",
	}
	parts := make([]string, 0, len(tabOrder))
	for _, s := range tabOrder {
		if s == a.state {
			parts = append(parts, activeTabStyle.Render(labels[s]))
		} else {
			parts = append(parts, inactiveTabStyle.Render(labels[s]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// money formats an amount with the configured currency symbol.
func (a *App) money(v float64) string {
	return fmt.Sprintf("%s%.2f", a.cfg.UI.CurrencySymbol, v)
}

// date reformats a wire date for display per ui.date_format.
func (a *App) date(wire string) string {
	format := a.cfg.UI.DateFormat
	if format == "" || format == "2006-01-02" {
		return wire
	}
	t, err := time.Parse("2006-01-02", wire)
	if err != nil {
		return wire
	}
	return t.Format(format)
}
