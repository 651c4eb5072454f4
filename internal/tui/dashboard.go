package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bitsandpieces/bitstui/internal/dashboard"
	"github.com/bitsandpieces/bitstui/internal/tui/widgets"
)

type dashModel struct {
	gen     int
	loaded  bool
	loading bool
	snap    dashboard.Snapshot
}

func (m *dashModel) load(a *App) tea.Cmd {
	m.gen++
	gen := m.gen
	m.loading = true
	return func() tea.Msg {
		snap, err := dashboard.Load(a.ctx, a.client, a.now())
		if err != nil {
			return errMsg{err}
		}
		return dashLoadedMsg{gen: gen, snap: snap}
	}
}

func (m *dashModel) apply(msg dashLoadedMsg) {
	if msg.gen != m.gen {
		return
	}
	m.loading = false
	m.loaded = true
	m.snap = msg.snap
}

func (m *dashModel) handleKey(a *App, k tea.KeyMsg) tea.Cmd {
	if k.String() == "r" {
		a.setStatus("refreshing...", false)
		return m.load(a)
	}
	return nil
}

func (m *dashModel) view(a *App) string {
	if m.loading && !m.loaded {
		return "loading dashboard..."
	}
	if !m.loaded {
		return "press r to load the dashboard"
	}
	s := m.snap
	width := a.width
	if width <= 0 {
		width = 100
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Income "+s.Month, a.money(s.MonthlyIncome)),
		card("Expenses "+s.Month, a.money(s.MonthlyExpense)),
		card("Budget "+s.Month, a.money(s.MonthlyBudget)),
		card("Balance", a.money(s.OverallBalance)),
	)

	rows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		remaining := c.Budget - c.Actual
		rows = append(rows, []string{c.Name, a.money(c.Budget), a.money(c.Actual), a.money(remaining)})
	}
	spendTable := widgets.Table{
		Headers: []string{"Category", "Budget", "Spent", "Left"},
		Rows:    rows,
		Cursor:  -1,
	}.Render(width, len(rows)+1)

	bars := make([]widgets.MonthBars, 0, len(s.Series))
	for _, p := range s.Series {
		bars = append(bars, widgets.MonthBars{
			Label:   p.Label,
			Income:  p.Income,
			Expense: p.Expense,
			Budget:  p.Budget,
		})
	}
	chart := widgets.Chart{Title: "Last 6 months", Data: bars}.Render(width, 3*len(bars)+1)

	feed := []string{titleStyle.Render("Recent activity")}
	if len(s.Recent) == 0 {
		feed = append(feed, mutedStyle.Render("(no transactions yet)"))
	}
	for _, item := range s.Recent {
		sign := "+"
		if item.Kind == "expense" {
			sign = "-"
		}
		line := fmt.Sprintf("%s  %-20s %s%s", a.date(item.Date), item.Category, sign, a.money(item.Amount))
		if item.Notes != "" {
			line += "  " + mutedStyle.Render(item.Notes)
		}
		feed = append(feed, line)
	}

	sections := []string{
		cards,
		titleStyle.Render("Budget vs actual"),
		spendTable,
		chart,
		strings.Join(feed, "\n"),
		helpStyle.Render("r: refresh  1-4/tab: views  ctrl+l: sign out  q: quit"),
	}
	return strings.Join(sections, "\n\n")
}

func card(title, value string) string {
	return cardStyle.Render(mutedStyle.Render(title) + "\n" + labelStyle.Render(value))
}
