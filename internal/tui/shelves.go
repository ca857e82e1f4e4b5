package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/models"
)

// shelvesModel lists shelves with a small inline form for creating one.
type shelvesModel struct {
	ctx     context.Context
	shelves service.ShelfService

	items   []models.Shelf
	idx     int
	loading bool
	adding  bool
	name    textinput.Model
	errMsg  string
}

func newShelvesModel(ctx context.Context, shelves service.ShelfService) shelvesModel {
	name := textinput.New()
	name.Placeholder = "shelf name"
	name.Width = 40
	return shelvesModel{ctx: ctx, shelves: shelves, loading: true, name: name}
}

func (m shelvesModel) cmdLoad() tea.Cmd {
	return func() tea.Msg {
		shelves, err := m.shelves.GetAll(m.ctx)
		return shelvesLoadedMsg{shelves: shelves, err: err}
	}
}

func (m shelvesModel) update(msg tea.Msg) (shelvesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shelvesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.shelves
		if m.idx >= len(m.items) {
			m.idx = max(0, len(m.items)-1)
		}
		return m, nil

	case shelfSavedMsg, shelfDeletedMsg:
		return m, m.cmdLoad()

	case tea.KeyMsg:
		if m.adding {
			switch msg.String() {
			case "esc":
				m.adding = false
				m.name.Reset()
				return m, nil
			case "enter":
				name := strings.TrimSpace(m.name.Value())
				if name == "" {
					return m, nil
				}
				m.adding = false
				m.name.Reset()
				return m, func() tea.Msg {
					_, err := m.shelves.Create(m.ctx, models.Shelf{Name: name})
					return shelfSavedMsg{err: err}
				}
			}
			var cmd tea.Cmd
			m.name, cmd = m.name.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.idx > 0 {
				m.idx--
			}
		case "down", "j":
			if m.idx < len(m.items)-1 {
				m.idx++
			}
		case "n":
			m.adding = true
			m.name.Focus()
			return m, textinput.Blink
		case "d":
			if m.idx < len(m.items) {
				id := m.items[m.idx].ID
				return m, func() tea.Msg {
					return shelfDeletedMsg{err: m.shelves.Delete(m.ctx, id)}
				}
			}
		}
	}

	return m, nil
}

func (m shelvesModel) view() string {
	if m.loading {
		return renderPage("SHELVES", "loading...", "")
	}

	var b strings.Builder
	if m.errMsg != "" {
		b.WriteString("ERROR: " + m.errMsg + "\n\n")
	}

	if len(m.items) == 0 && !m.adding {
		b.WriteString("no shelves yet, press n to add one")
	}

	for i, shelf := range m.items {
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %-40s %d books\n", cursor, fitText(shelf.Name, 40), len(shelf.BookIDs)))
	}

	if m.adding {
		b.WriteString("\n" + m.name.View())
	}

	return renderPage("SHELVES", strings.TrimRight(b.String(), "\n"),
		"n: new │ d: delete │ tab: library │ esc: back")
}
