package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitsandpieces/bitstui/internal/budget"
	"github.com/bitsandpieces/bitstui/internal/tui/widgets"
)

type budMode string

const (
	budBrowse  budMode = "browse"
	budEdit    budMode = "edit"
	budAdd     budMode = "add"
	budRescale budMode = "rescale"
)

// budModel shows the monthly budget buckets. Only the newest month is
// editable, older buckets are history.
type budModel struct {
	gen      int
	loaded   bool
	planner  *budget.Planner
	vw       budget.View
	monthIdx int // 0 = current month
	cursor   int
	mode     budMode

	amount   textinput.Model
	name     textinput.Model
	addFocus int // 0 = name, 1 = amount
}

func (m *budModel) load(a *App) tea.Cmd {
	m.gen++
	gen := m.gen
	return func() tea.Msg {
		records, err := a.client.Budgets(a.ctx, "", 0)
		if err != nil {
			return errMsg{err}
		}
		catalog, err := a.client.Categories(a.ctx, "")
		if err != nil {
			return errMsg{err}
		}
		return budgetLoadedMsg{gen: gen, planner: budget.NewPlanner(records, catalog, a.client, a.log)}
	}
}

func (m *budModel) applyLoaded(msg budgetLoadedMsg) {
	if msg.gen != m.gen {
		return
	}
	m.planner = msg.planner
	m.vw = msg.planner.View()
	m.loaded = true
	m.monthIdx = 0
	m.cursor = 0
	m.mode = budBrowse
}

func (m *budModel) applySaved(a *App, msg budgetSavedMsg) tea.Cmd {
	if msg.gen != m.gen {
		return nil
	}
	m.vw = msg.view
	m.clampCursor()
	a.setStatus(msg.note, false)
	return nil
}

func (m *budModel) typing() bool { return m.mode != budBrowse }

func (m *budModel) handleKey(a *App, k tea.KeyMsg) tea.Cmd {
	if m.mode != budBrowse {
		return m.handleFormKey(a, k)
	}
	bucket, ok := m.vw.Bucket(m.monthIdx)
	switch k.String() {
	case "r":
		a.setStatus("refreshing...", false)
		return m.load(a)
	case "left", "h":
		if m.vw.CanOlder(m.monthIdx) {
			m.monthIdx++
			m.cursor = 0
		}
	case "right", "l":
		if m.vw.CanNewer(m.monthIdx) {
			m.monthIdx--
			m.cursor = 0
		}
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if ok && m.cursor < len(bucket.Categories)-1 {
			m.cursor++
		}
	case "enter":
		if m.monthIdx != 0 || !ok || len(bucket.Categories) == 0 {
			return nil
		}
		line := bucket.Categories[m.cursor]
		m.amount = textinput.New()
		m.amount.Prompt = line.Name + ": "
		m.amount.SetValue(strconv.FormatFloat(line.Budget, 'f', 2, 64))
		m.amount.Focus()
		m.mode = budEdit
		return textinput.Blink
	case "a":
		if m.monthIdx != 0 || !ok {
			return nil
		}
		m.name = textinput.New()
		m.name.Prompt = "Category: "
		m.name.Focus()
		m.amount = textinput.New()
		m.amount.Prompt = "Amount:   "
		m.addFocus = 0
		m.mode = budAdd
		return textinput.Blink
	case "t":
		if m.monthIdx != 0 || !ok {
			return nil
		}
		m.amount = textinput.New()
		m.amount.Prompt = "New total: "
		m.amount.SetValue(strconv.FormatFloat(bucket.TotalBudget, 'f', 2, 64))
		m.amount.Focus()
		m.mode = budRescale
		return textinput.Blink
	}
	return nil
}

func (m *budModel) handleFormKey(a *App, k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		m.mode = budBrowse
		return nil
	case "tab", "shift+tab":
		if m.mode == budAdd {
			m.addFocus = 1 - m.addFocus
			if m.addFocus == 0 {
				m.amount.Blur()
				m.name.Focus()
			} else {
				m.name.Blur()
				m.amount.Focus()
			}
		}
		return nil
	case "enter":
		return m.submitForm(a)
	}
	var cmd tea.Cmd
	if m.mode == budAdd && m.addFocus == 0 {
		m.name, cmd = m.name.Update(k)
	} else {
		m.amount, cmd = m.amount.Update(k)
	}
	return cmd
}

func (m *budModel) submitForm(a *App) tea.Cmd {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.amount.Value()), 64)
	if err != nil || amount < 0 {
		a.setStatus("enter a non-negative amount", true)
		return nil
	}
	mode := m.mode
	m.mode = budBrowse
	gen := m.gen
	p := m.planner

	switch mode {
	case budEdit:
		bucket, ok := m.vw.Bucket(0)
		if !ok || m.cursor >= len(bucket.Categories) {
			return nil
		}
		id := bucket.Categories[m.cursor].CategoryID
		return func() tea.Msg {
			if err := p.SetCategoryAmount(a.ctx, id, amount); err != nil {
				return errMsg{err}
			}
			return budgetSavedMsg{gen: gen, view: p.View(), note: "budget updated"}
		}
	case budAdd:
		name := strings.TrimSpace(m.name.Value())
		if name == "" {
			a.setStatus("enter a category name", true)
			return nil
		}
		return func() tea.Msg {
			if err := p.AddCategory(a.ctx, name, amount); err != nil {
				return errMsg{err}
			}
			return budgetSavedMsg{gen: gen, view: p.View(), note: name + " added to this month"}
		}
	case budRescale:
		return func() tea.Msg {
			if err := p.Rescale(a.ctx, amount); err != nil {
				return errMsg{err}
			}
			return budgetSavedMsg{gen: gen, view: p.View(), note: "budget rescaled"}
		}
	}
	return nil
}

func (m *budModel) clampCursor() {
	if bucket, ok := m.vw.Bucket(m.monthIdx); ok {
		if m.cursor >= len(bucket.Categories) {
			m.cursor = 0
		}
	}
}

func (m *budModel) view(a *App) string {
	if !m.loaded {
		return "loading budgets..."
	}
	bucket, ok := m.vw.Bucket(m.monthIdx)
	if !ok {
		return "No budget records yet."
	}
	width := a.width
	if width <= 0 {
		width = 100
	}

	older, newer := "   ", "   "
	if m.vw.CanOlder(m.monthIdx) {
		older = "← "
	}
	if m.vw.CanNewer(m.monthIdx) {
		newer = " →"
	}
	header := titleStyle.Render(fmt.Sprintf("%s%s%s", older, bucket.Month, newer))
	if m.monthIdx != 0 {
		header += "  " + mutedStyle.Render("(history, read only)")
	}

	rows := make([][]string, 0, len(bucket.Categories))
	for _, line := range bucket.Categories {
		rows = append(rows, []string{line.Name, a.money(line.Budget)})
	}
	cursor := m.cursor
	if m.monthIdx != 0 {
		cursor = -1
	}
	table := widgets.Table{
		Headers: []string{"Category", "Budget"},
		Rows:    rows,
		Cursor:  cursor,
	}.Render(width, len(rows)+1)

	total := labelStyle.Render("Total: " + a.money(bucket.TotalBudget))

	// totals across all months, oldest first
	months := m.vw.Months()
	bars := make([]widgets.MonthBars, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		if b, ok := m.vw.Bucket(i); ok {
			label := b.Month
			if len(label) > 3 {
				label = label[:3]
			}
			bars = append(bars, widgets.MonthBars{Label: label, Budget: b.TotalBudget})
		}
	}
	history := widgets.BudgetChart{Title: "Month totals", Data: bars}.Render(width, len(bars)+1)

	var form string
	switch m.mode {
	case budEdit:
		form = m.amount.View() + "\n" + helpStyle.Render("enter: save  esc: cancel")
	case budAdd:
		form = m.name.View() + "\n" + m.amount.View() + "\n" + helpStyle.Render("enter: save  tab: switch field  esc: cancel")
	case budRescale:
		form = m.amount.View() + "\n" + helpStyle.Render("scales every category proportionally  enter: apply  esc: cancel")
	}

	hints := "←/→: months  ↑/↓: select  r: refresh"
	if m.monthIdx == 0 {
		hints = "enter: edit amount  a: add category  t: set total  " + hints
	}

	sections := []string{header, table, total, history}
	if form != "" {
		sections = append(sections, form)
	}
	sections = append(sections, helpStyle.Render(hints))
	return strings.Join(sections, "\n\n")
}
