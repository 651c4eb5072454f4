package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/tui/widgets"
)

type catsMode string

const (
	catsBrowse catsMode = "browse"
	catsNew    catsMode = "new"
	catsRename catsMode = "rename"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// catsModel manages the expense and income category lists side by
// side.
type catsModel struct {
	gen    int
	loaded bool

	expenses []api.Category
	incomes  []api.Category
	pane     int // 0 = expenses, 1 = incomes
	cursor   int
	mode     catsMode

	name      textinput.Model
	color     textinput.Model
	focus     int // 0 = name, 1 = color
	editingID int
}

func newCatsModel() catsModel {
	return catsModel{mode: catsBrowse}
}

func (m *catsModel) load(a *App) tea.Cmd {
	m.gen++
	gen := m.gen
	return func() tea.Msg {
		expenses, err := a.client.Categories(a.ctx, api.TypeExpense)
		if err != nil {
			return errMsg{err}
		}
		incomes, err := a.client.Categories(a.ctx, api.TypeIncome)
		if err != nil {
			return errMsg{err}
		}
		return categoriesMsg{gen: gen, expenses: expenses, incomes: incomes}
	}
}

func (m *catsModel) apply(msg categoriesMsg) {
	if msg.gen != m.gen {
		return
	}
	m.expenses = msg.expenses
	m.incomes = msg.incomes
	m.loaded = true
	if m.cursor >= len(m.active()) {
		m.cursor = 0
	}
}

func (m *catsModel) active() []api.Category {
	if m.pane == 1 {
		return m.incomes
	}
	return m.expenses
}

func (m *catsModel) activeType() string {
	if m.pane == 1 {
		return api.TypeIncome
	}
	return api.TypeExpense
}

func (m *catsModel) typing() bool { return m.mode != catsBrowse }

func (m *catsModel) handleKey(a *App, k tea.KeyMsg) tea.Cmd {
	if m.mode != catsBrowse {
		return m.handleFormKey(a, k)
	}
	switch k.String() {
	case "r":
		a.setStatus("refreshing...", false)
		return m.load(a)
	case "left", "h", "right", "l":
		m.pane = 1 - m.pane
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.active())-1 {
			m.cursor++
		}
	case "n":
		m.openForm(catsNew, "", "")
		return textinput.Blink
	case "enter":
		list := m.active()
		if len(list) == 0 {
			return nil
		}
		cat := list[m.cursor]
		m.editingID = cat.ID
		m.openForm(catsRename, cat.Name, cat.Color)
		return textinput.Blink
	case "backspace", "delete":
		list := m.active()
		if len(list) == 0 {
			return nil
		}
		return m.deleteCmd(a, list[m.cursor])
	}
	return nil
}

func (m *catsModel) openForm(mode catsMode, name, color string) {
	m.name = textinput.New()
	m.name.Prompt = "Name:  "
	m.name.SetValue(name)
	m.name.Focus()
	m.color = textinput.New()
	m.color.Prompt = "Color: "
	m.color.Placeholder = "#aabbcc"
	m.color.SetValue(color)
	m.focus = 0
	m.mode = mode
}

func (m *catsModel) handleFormKey(a *App, k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		m.mode = catsBrowse
		return nil
	case "tab", "shift+tab", "down", "up":
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.color.Blur()
			m.name.Focus()
		} else {
			m.name.Blur()
			m.color.Focus()
		}
		return nil
	case "enter":
		return m.submitForm(a)
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.name, cmd = m.name.Update(k)
	} else {
		m.color, cmd = m.color.Update(k)
	}
	return cmd
}

func (m *catsModel) submitForm(a *App) tea.Cmd {
	name := strings.TrimSpace(m.name.Value())
	color := strings.TrimSpace(m.color.Value())
	if name == "" {
		a.setStatus("enter a category name", true)
		return nil
	}
	if color != "" && !colorPattern.MatchString(color) {
		a.setStatus("colors look like #aabbcc", true)
		return nil
	}

	mode := m.mode
	m.mode = catsBrowse
	gen := m.gen
	typ := m.activeType()
	id := m.editingID
	return func() tea.Msg {
		var err error
		note := name + " renamed"
		if mode == catsNew {
			_, err = a.client.CreateCategory(a.ctx, name, color, typ)
			note = name + " created"
		} else {
			_, err = a.client.UpdateCategory(a.ctx, id, name, color)
		}
		if err != nil {
			return errMsg{err}
		}
		return categorySavedMsg{gen: gen, note: note}
	}
}

func (m *catsModel) deleteCmd(a *App, cat api.Category) tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		if err := a.client.DeleteCategory(a.ctx, cat.ID); err != nil {
			return errMsg{err}
		}
		return categorySavedMsg{gen: gen, note: cat.Name + " removed"}
	}
}

func (m *catsModel) view(a *App) string {
	if !m.loaded {
		return "loading categories..."
	}
	width := a.width
	if width <= 0 {
		width = 100
	}
	paneWidth := width/2 - 2

	pane := func(title string, list []api.Category, active bool) string {
		style := inactiveTabStyle
		if active {
			style = activeTabStyle
		}
		rows := make([][]string, 0, len(list))
		for _, c := range list {
			color := c.Color
			if color == "" {
				color = "-"
			}
			rows = append(rows, []string{c.Name, color})
		}
		cursor := -1
		if active {
			cursor = m.cursor
		}
		body := widgets.Table{
			Headers: []string{"Name", "Color"},
			Rows:    rows,
			Cursor:  cursor,
		}.Render(paneWidth, len(rows)+1)
		if len(rows) == 0 {
			body = mutedStyle.Render("(none yet)")
		}
		return style.Render(fmt.Sprintf("%s (%d)", title, len(list))) + "\n" + body
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(width/2).Render(pane("Expense categories", m.expenses, m.pane == 0)),
		pane("Income categories", m.incomes, m.pane == 1),
	)

	var form string
	switch m.mode {
	case catsNew:
		form = titleStyle.Render("New "+m.activeType()+" category") + "\n" + m.name.View() + "\n" + m.color.View() +
			"\n" + helpStyle.Render("enter: save  tab: switch field  esc: cancel")
	case catsRename:
		form = titleStyle.Render("Edit category") + "\n" + m.name.View() + "\n" + m.color.View() +
			"\n" + helpStyle.Render("enter: save  tab: switch field  esc: cancel")
	}

	sections := []string{panes}
	if form != "" {
		sections = append(sections, form)
	}
	sections = append(sections, helpStyle.Render("←/→: switch pane  ↑/↓: select  n: new  enter: edit  del: remove  r: refresh"))
	return strings.Join(sections, "\n\n")
}
