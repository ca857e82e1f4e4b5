// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/models"
)

// authFormModel renders a login/secret form and dispatches the async
// register or login command on submit. The same model backs both screens;
// registering distinguishes them.
type authFormModel struct {
	ctx         context.Context
	auth        AuthFlow
	registering bool

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

func newAuthFormModel(ctx context.Context, auth AuthFlow, registering bool) authFormModel {
	loginInput := textinput.New()
	loginInput.Placeholder = "login"
	loginInput.CharLimit = 64
	loginInput.Width = 40
	loginInput.Focus()

	secretInput := textinput.New()
	secretInput.Placeholder = "secret"
	secretInput.CharLimit = 256
	secretInput.Width = 40
	secretInput.EchoMode = textinput.EchoPassword
	secretInput.EchoCharacter = '*'

	return authFormModel{
		ctx:         ctx,
		auth:        auth,
		registering: registering,
		inputs:      []textinput.Model{loginInput, secretInput},
	}
}

func (m authFormModel) update(msg tea.Msg) (authFormModel, tea.Cmd) {
	if result, ok := msg.(authDoneMsg); ok {
		m.submitting = false
		if result.err != nil {
			m.errMsg = result.err.Error()
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.submitting = false
			m.errMsg = ""
			return m, navigate(screenWelcome)
		case "tab":
			m.focusField((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab":
			m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}

			login := strings.TrimSpace(m.inputs[0].Value())
			secret := m.inputs[1].Value()
			if login == "" || secret == "" {
				m.errMsg = "login and secret are required"
				return m, nil
			}

			m.submitting = true
			m.errMsg = ""
			return m, m.cmdSubmit(models.Credentials{Login: login, Secret: secret})
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *authFormModel) focusField(idx int) {
	m.inputs[m.focus].Blur()
	m.focus = idx
	m.inputs[m.focus].Focus()
}

func (m authFormModel) cmdSubmit(creds models.Credentials) tea.Cmd {
	return func() tea.Msg {
		var err error
		if m.registering {
			err = m.auth.Register(m.ctx, creds)
		} else {
			err = m.auth.Login(m.ctx, creds)
		}
		return authDoneMsg{registered: m.registering, err: err}
	}
}

func (m authFormModel) view() string {
	var b strings.Builder
	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	if m.submitting {
		b.WriteString("\nsubmitting...")
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("ERROR: " + m.errMsg))
	}

	title := "SIGN IN"
	if m.registering {
		title = "REGISTER"
	}
	return renderPage(title, strings.TrimRight(b.String(), "\n"), "enter: submit │ tab: next field │ esc: back")
}
