package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

// authModel is the sign-in / sign-up form shown before a session
// exists.
type authModel struct {
	register bool
	inputs   []textinput.Model
	focus    int
	busy     bool
}

func newAuthModel() authModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
	}
	inputs[fieldUsername].Prompt = "Username: "
	inputs[fieldEmail].Prompt = "Email:    "
	inputs[fieldPassword].Prompt = "Password: "
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldConfirm].Prompt = "Confirm:  "
	inputs[fieldConfirm].EchoMode = textinput.EchoPassword
	inputs[fieldUsername].Focus()
	return authModel{inputs: inputs}
}

func (m *authModel) focusCmd() tea.Cmd { return textinput.Blink }

// fields returns the active field indexes for the current mode.
func (m *authModel) fields() []int {
	if m.register {
		return []int{fieldUsername, fieldEmail, fieldPassword, fieldConfirm}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m *authModel) handleKey(a *App, k tea.KeyMsg) tea.Cmd {
	fields := m.fields()
	switch k.String() {
	case "esc":
		return tea.Quit
	case "ctrl+t":
		m.register = !m.register
		m.moveFocus(0)
		a.setStatus("", false)
		return nil
	case "tab", "down":
		m.cycleFocus(1)
		return nil
	case "shift+tab", "up":
		m.cycleFocus(-1)
		return nil
	case "enter":
		if m.busy {
			return nil
		}
		return m.submit(a)
	}
	var cmd tea.Cmd
	for _, i := range fields {
		if m.inputs[i].Focused() {
			m.inputs[i], cmd = m.inputs[i].Update(k)
		}
	}
	return cmd
}

func (m *authModel) handleMsg(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, i := range m.fields() {
		if m.inputs[i].Focused() {
			m.inputs[i], cmd = m.inputs[i].Update(msg)
		}
	}
	return cmd
}

func (m *authModel) cycleFocus(dir int) {
	fields := m.fields()
	pos := 0
	for i, f := range fields {
		if f == m.focusedField() {
			pos = i
			break
		}
	}
	m.moveFocus((pos + dir + len(fields)) % len(fields))
}

func (m *authModel) focusedField() int {
	for _, f := range m.fields() {
		if m.inputs[f].Focused() {
			return f
		}
	}
	return fieldUsername
}

func (m *authModel) moveFocus(pos int) {
	fields := m.fields()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = pos
	m.inputs[fields[pos]].Focus()
}

func (m *authModel) submit(a *App) tea.Cmd {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	confirm := m.inputs[fieldConfirm].Value()

	if username == "" || password == "" {
		a.setStatus("username and password are required", true)
		return nil
	}
	if m.register {
		if email == "" {
			a.setStatus("email is required", true)
			return nil
		}
		if password != confirm {
			a.setStatus("passwords do not match", true)
			return nil
		}
	}

	m.busy = true
	register := m.register
	a.setStatus("signing in...", false)
	return func() tea.Msg {
		var (
			sess = a.client.Session()
			err  error
		)
		if register {
			sess, err = a.client.Register(a.ctx, username, email, password)
		} else {
			sess, err = a.client.Login(a.ctx, username, password)
		}
		if err != nil {
			return errMsg{err}
		}
		return authDoneMsg{sess: sess}
	}
}

func (m *authModel) view(a *App) string {
	mode := "Sign in"
	toggleHint := "ctrl+t: create an account"
	if m.register {
		mode = "Create account"
		toggleHint = "ctrl+t: back to sign in"
	}
	lines := []string{
		titleStyle.Render("bitstui"),
		mutedStyle.Render(a.cfg.API.BaseURL),
		"",
		labelStyle.Render(mode),
		"",
	}
	for _, f := range m.fields() {
		lines = append(lines, m.inputs[f].View())
	}
	lines = append(lines, "", helpStyle.Render("enter: submit  tab: next field  "+toggleHint+"  esc: quit"))
	out := strings.Join(lines, "\n")
	if a.status != "" {
		style := statusStyle
		if a.isErr {
			style = statusErrStyle
		}
		out += "\n\n" + style.Render(a.status)
	}
	return out
}
