package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bitsandpieces/bitstui/internal/api"
	"github.com/bitsandpieces/bitstui/internal/tui/widgets"
)

type txMode string

const (
	txBrowse txMode = "browse"
	txFilter txMode = "filter"
	txCreate txMode = "create"
)

var orderings = []string{"-date", "date", "-amount", "amount"}

// txModel is the paginated incomes/expenses list. One model serves
// both resources, the kind toggle just swaps the endpoint and reloads.
type txModel struct {
	gen    int
	loaded bool
	kind   api.Kind
	query  api.TransactionQuery
	page   api.TransactionPage
	cursor int
	mode   txMode

	expenseCats []api.Category
	incomeCats  []api.Category

	inputs []textinput.Model
	focus  int
}

const (
	txInCategory = iota
	txInMin
	txInMax
	txInStart
	txInEnd
	txInAmount
	txInDate
	txInNotes
)

func newTxModel() txModel {
	return txModel{
		kind:  api.Expenses,
		query: api.TransactionQuery{Page: 1, Ordering: "-date"},
		mode:  txBrowse,
	}
}

func (m *txModel) setCatalog(expenses, incomes []api.Category) {
	m.expenseCats = expenses
	m.incomeCats = incomes
}

func (m *txModel) catalog() []api.Category {
	if m.kind == api.Incomes {
		return m.incomeCats
	}
	return m.expenseCats
}

func (m *txModel) categoryName(id int) string {
	for _, c := range append(append([]api.Category{}, m.expenseCats...), m.incomeCats...) {
		if c.ID == id {
			return c.Name
		}
	}
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("Category %d", id)
}

func (m *txModel) load(a *App) tea.Cmd {
	m.gen++
	gen := m.gen
	kind := m.kind
	q := m.query
	return func() tea.Msg {
		page, err := a.client.Transactions(a.ctx, kind, q)
		if err != nil {
			return errMsg{err}
		}
		return txPageMsg{gen: gen, kind: kind, page: page}
	}
}

func (m *txModel) applyPage(msg txPageMsg) {
	if msg.gen != m.gen || msg.kind != m.kind {
		return
	}
	m.page = msg.page
	m.loaded = true
	if m.cursor >= len(m.page.Results) {
		m.cursor = 0
	}
}

func (m *txModel) typing() bool { return m.mode != txBrowse }

func (m *txModel) handleKey(a *App, k tea.KeyMsg) tea.Cmd {
	if m.mode != txBrowse {
		return m.handleFormKey(a, k)
	}
	switch k.String() {
	case "r":
		a.setStatus("refreshing...", false)
		return m.load(a)
	case "e":
		if m.kind != api.Expenses {
			m.kind = api.Expenses
			m.resetQuery()
			return m.load(a)
		}
	case "i":
		if m.kind != api.Incomes {
			m.kind = api.Incomes
			m.resetQuery()
			return m.load(a)
		}
	case "left", "h":
		if m.query.Page > 1 {
			m.query.Page--
			return m.load(a)
		}
	case "right", "l":
		if m.query.Page < m.page.TotalPages() {
			m.query.Page++
			return m.load(a)
		}
	case "o":
		m.query.Ordering = nextOrdering(m.query.Ordering)
		m.query.Page = 1
		return m.load(a)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.page.Results)-1 {
			m.cursor++
		}
	case "f":
		m.openFilterForm()
		return textinput.Blink
	case "c":
		m.resetQuery()
		a.setStatus("filters cleared", false)
		return m.load(a)
	case "n":
		m.openCreateForm(a)
		return textinput.Blink
	}
	return nil
}

func (m *txModel) resetQuery() {
	m.query = api.TransactionQuery{Page: 1, Ordering: m.query.Ordering}
	if m.query.Ordering == "" {
		m.query.Ordering = "-date"
	}
	m.cursor = 0
}

func nextOrdering(current string) string {
	for i, o := range orderings {
		if o == current {
			return orderings[(i+1)%len(orderings)]
		}
	}
	return orderings[0]
}

func (m *txModel) openFilterForm() {
	m.inputs = make([]textinput.Model, txInEnd+1)
	prompts := map[int]string{
		txInCategory: "Category:   ",
		txInMin:      "Min amount: ",
		txInMax:      "Max amount: ",
		txInStart:    "From date:  ",
		txInEnd:      "To date:    ",
	}
	for i := range m.inputs {
		m.inputs[i] = textinput.New()
		m.inputs[i].Prompt = prompts[i]
	}
	if m.query.Category > 0 {
		m.inputs[txInCategory].SetValue(m.categoryName(m.query.Category))
	}
	if m.query.MinAmount > 0 {
		m.inputs[txInMin].SetValue(strconv.FormatFloat(m.query.MinAmount, 'f', -1, 64))
	}
	if m.query.MaxAmount > 0 {
		m.inputs[txInMax].SetValue(strconv.FormatFloat(m.query.MaxAmount, 'f', -1, 64))
	}
	m.inputs[txInStart].SetValue(m.query.StartDate)
	m.inputs[txInEnd].SetValue(m.query.EndDate)
	m.focus = 0
	m.inputs[0].Focus()
	m.mode = txFilter
}

func (m *txModel) openCreateForm(a *App) {
	m.inputs = make([]textinput.Model, txInNotes+1)
	prompts := map[int]string{
		txInAmount:   "Amount:   ",
		txInCategory: "Category: ",
		txInDate:     "Date:     ",
		txInNotes:    "Notes:    ",
	}
	for i := range m.inputs {
		m.inputs[i] = textinput.New()
		m.inputs[i].Prompt = prompts[i]
	}
	m.inputs[txInDate].SetValue(a.now().Format("2006-01-02"))
	m.focus = txInAmount
	m.inputs[txInAmount].Focus()
	m.mode = txCreate
}

// formFields returns the input indexes active in the current form, in
// focus order.
func (m *txModel) formFields() []int {
	if m.mode == txCreate {
		return []int{txInAmount, txInCategory, txInDate, txInNotes}
	}
	return []int{txInCategory, txInMin, txInMax, txInStart, txInEnd}
}

func (m *txModel) handleFormKey(a *App, k tea.KeyMsg) tea.Cmd {
	fields := m.formFields()
	switch k.String() {
	case "esc":
		m.mode = txBrowse
		return nil
	case "tab", "down":
		return m.cycleFocus(fields, 1)
	case "shift+tab", "up":
		return m.cycleFocus(fields, -1)
	case "enter":
		if m.mode == txFilter {
			return m.applyFilters(a)
		}
		return m.submitCreate(a)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(k)
	return cmd
}

func (m *txModel) cycleFocus(fields []int, dir int) tea.Cmd {
	pos := 0
	for i, f := range fields {
		if f == m.focus {
			pos = i
			break
		}
	}
	m.inputs[m.focus].Blur()
	m.focus = fields[(pos+dir+len(fields))%len(fields)]
	m.inputs[m.focus].Focus()
	return nil
}

// resolveCategory accepts a category name (case-insensitive) or a
// numeric id.
func (m *txModel) resolveCategory(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	for _, c := range m.catalog() {
		if strings.EqualFold(c.Name, raw) {
			return c.ID, nil
		}
	}
	return 0, fmt.Errorf("no %s category named %q", strings.TrimSuffix(string(m.kind), "s"), raw)
}

func parseOptionalAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return v, nil
}

func parseOptionalDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return "", fmt.Errorf("dates use YYYY-MM-DD, got %q", raw)
	}
	return raw, nil
}

func (m *txModel) applyFilters(a *App) tea.Cmd {
	categoryID, err := m.resolveCategory(m.inputs[txInCategory].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	minAmount, err := parseOptionalAmount(m.inputs[txInMin].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	maxAmount, err := parseOptionalAmount(m.inputs[txInMax].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	start, err := parseOptionalDate(m.inputs[txInStart].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	end, err := parseOptionalDate(m.inputs[txInEnd].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}

	m.query.Category = categoryID
	m.query.MinAmount = minAmount
	m.query.MaxAmount = maxAmount
	m.query.StartDate = start
	m.query.EndDate = end
	m.query.Page = 1
	m.cursor = 0
	m.mode = txBrowse
	return m.load(a)
}

func (m *txModel) submitCreate(a *App) tea.Cmd {
	amount, err := strconv.ParseFloat(strings.TrimSpace(m.inputs[txInAmount].Value()), 64)
	if err != nil || amount <= 0 {
		a.setStatus("enter a positive amount", true)
		return nil
	}
	categoryID, err := m.resolveCategory(m.inputs[txInCategory].Value())
	if err != nil {
		a.setStatus(err.Error(), true)
		return nil
	}
	if categoryID == 0 {
		a.setStatus("category is required", true)
		return nil
	}
	date, err := parseOptionalDate(m.inputs[txInDate].Value())
	if err != nil || date == "" {
		a.setStatus("dates use YYYY-MM-DD", true)
		return nil
	}
	notes := strings.TrimSpace(m.inputs[txInNotes].Value())

	m.mode = txBrowse
	gen := m.gen
	kind := m.kind
	return func() tea.Msg {
		_, err := a.client.CreateTransaction(a.ctx, kind, api.NewTransaction{
			Amount:   api.Amount(amount),
			Category: categoryID,
			Date:     date,
			Notes:    notes,
		})
		if err != nil {
			return errMsg{err}
		}
		return txCreatedMsg{gen: gen}
	}
}

func (m *txModel) view(a *App) string {
	width := a.width
	if width <= 0 {
		width = 100
	}

	kindTab := func(kind api.Kind, label string) string {
		if m.kind == kind {
			return activeTabStyle.Render(label)
		}
		return inactiveTabStyle.Render(label)
	}
	header := kindTab(api.Expenses, "e Expenses") + " " + kindTab(api.Incomes, "i Incomes")

	if !m.loaded {
		return header + "\n\nloading transactions..."
	}

	rows := make([][]string, 0, len(m.page.Results))
	for _, tx := range m.page.Results {
		rows = append(rows, []string{
			a.date(tx.Date),
			m.categoryName(tx.Category),
			a.money(float64(tx.Amount)),
			tx.Notes,
		})
	}
	table := widgets.Table{
		Headers: []string{"Date", "Category", "Amount", "Notes"},
		Rows:    rows,
		Cursor:  m.cursor,
	}.Render(width, len(rows)+1)
	if len(rows) == 0 {
		table = mutedStyle.Render("(no transactions match)")
	}

	footer := fmt.Sprintf("page %d of %d  (%d records, ordered by %s)",
		m.query.Page, m.page.TotalPages(), m.page.Count, m.query.Ordering)
	if f := m.filterSummary(); f != "" {
		footer += "  filters: " + f
	}

	var form string
	switch m.mode {
	case txFilter, txCreate:
		var lines []string
		for _, f := range m.formFields() {
			lines = append(lines, m.inputs[f].View())
		}
		lines = append(lines, helpStyle.Render("enter: apply  tab: next field  esc: cancel"))
		form = strings.Join(lines, "\n")
	}

	sections := []string{header, table, mutedStyle.Render(footer)}
	if form != "" {
		sections = append(sections, form)
	}
	sections = append(sections, helpStyle.Render("←/→: pages  o: ordering  f: filter  c: clear filters  n: new  r: refresh"))
	return strings.Join(sections, "\n\n")
}

func (m *txModel) filterSummary() string {
	var parts []string
	if m.query.Category > 0 {
		parts = append(parts, m.categoryName(m.query.Category))
	}
	if m.query.MinAmount > 0 {
		parts = append(parts, fmt.Sprintf(">=%.2f", m.query.MinAmount))
	}
	if m.query.MaxAmount > 0 {
		parts = append(parts, fmt.Sprintf("<=%.2f", m.query.MaxAmount))
	}
	if m.query.StartDate != "" {
		parts = append(parts, "from "+m.query.StartDate)
	}
	if m.query.EndDate != "" {
		parts = append(parts, "to "+m.query.EndDate)
	}
	return strings.Join(parts, ", ")
}
