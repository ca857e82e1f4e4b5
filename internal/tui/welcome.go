package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type welcomeModel struct {
	items  []string
	idx    int
	status string
}

func newWelcomeModel() welcomeModel {
	return welcomeModel{items: []string{"Sign in", "Register"}}
}

func (m welcomeModel) update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.idx > 0 {
			m.idx--
		}
	case "down", "j":
		if m.idx < len(m.items)-1 {
			m.idx++
		}
	case "enter":
		if m.idx == 0 {
			return m, navigate(screenLogin)
		}
		return m, navigate(screenRegister)
	}

	return m, nil
}

func (m welcomeModel) view() string {
	var b strings.Builder

	if m.status != "" {
		b.WriteString("OK: ")
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		b.WriteString(cursor)
		b.WriteString(" ")
		b.WriteString(item)
		b.WriteString("\n")
	}

	return renderPage("SHELFSYNC", strings.TrimRight(b.String(), "\n"), "enter: select │ ↑/↓: move")
}
