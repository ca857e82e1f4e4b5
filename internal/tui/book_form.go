// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/models"
)

const (
	fieldTitle = iota
	fieldAuthors
	fieldISBN
	fieldPageCount
	fieldCurrentPage
	fieldRating
	fieldNotes
	fieldCount
)

// bookFormModel backs both the create and the edit screen; editing is
// distinguished by a non-empty book ID.
type bookFormModel struct {
	ctx   context.Context
	books service.BookService

	editing models.Book
	inputs  []textinput.Model
	focus   int
	saving  bool
	errMsg  string
}

func newBookFormModel(ctx context.Context, books service.BookService, editing models.Book) bookFormModel {
	placeholders := [fieldCount]string{
		"title", "authors (comma separated)", "isbn", "pages", "current page", "rating 0-5", "notes",
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.Width = 48
		inputs[i] = in
	}
	inputs[fieldTitle].Focus()

	if editing.ID != "" {
		inputs[fieldTitle].SetValue(editing.Title)
		inputs[fieldAuthors].SetValue(strings.Join(editing.Authors, ", "))
		inputs[fieldISBN].SetValue(editing.ISBN)
		if editing.PageCount > 0 {
			inputs[fieldPageCount].SetValue(strconv.Itoa(editing.PageCount))
		}
		if editing.CurrentPage > 0 {
			inputs[fieldCurrentPage].SetValue(strconv.Itoa(editing.CurrentPage))
		}
		if editing.Rating > 0 {
			inputs[fieldRating].SetValue(strconv.Itoa(editing.Rating))
		}
		inputs[fieldNotes].SetValue(editing.Notes)
	}

	return bookFormModel{ctx: ctx, books: books, editing: editing, inputs: inputs}
}

func (m bookFormModel) update(msg tea.Msg) (bookFormModel, tea.Cmd) {
	if result, ok := msg.(bookSavedMsg); ok {
		m.saving = false
		if result.err != nil {
			m.errMsg = result.err.Error()
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "tab", "down":
			m.focusField((m.focus + 1) % len(m.inputs))
			return m, nil
		case "shift+tab", "up":
			m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
			return m, nil
		case "enter":
			if m.saving {
				return m, nil
			}

			book, err := m.assemble()
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}

			m.saving = true
			m.errMsg = ""
			return m, m.cmdSave(book)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *bookFormModel) focusField(idx int) {
	m.inputs[m.focus].Blur()
	m.focus = idx
	m.inputs[m.focus].Focus()
}

func (m bookFormModel) assemble() (models.Book, error) {
	book := m.editing
	book.Title = strings.TrimSpace(m.inputs[fieldTitle].Value())
	book.ISBN = strings.TrimSpace(m.inputs[fieldISBN].Value())
	book.Notes = strings.TrimSpace(m.inputs[fieldNotes].Value())

	book.Authors = nil
	for _, author := range strings.Split(m.inputs[fieldAuthors].Value(), ",") {
		if author = strings.TrimSpace(author); author != "" {
			book.Authors = append(book.Authors, author)
		}
	}

	var err error
	if book.PageCount, err = intField(m.inputs[fieldPageCount].Value()); err != nil {
		return models.Book{}, err
	}
	if book.CurrentPage, err = intField(m.inputs[fieldCurrentPage].Value()); err != nil {
		return models.Book{}, err
	}
	if book.Rating, err = intField(m.inputs[fieldRating].Value()); err != nil {
		return models.Book{}, err
	}

	return book, nil
}

func intField(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (m bookFormModel) cmdSave(book models.Book) tea.Cmd {
	return func() tea.Msg {
		var err error
		if book.ID == "" {
			_, err = m.books.Create(m.ctx, book)
		} else {
			_, err = m.books.Update(m.ctx, book)
		}
		return bookSavedMsg{err: err}
	}
}

func (m bookFormModel) view() string {
	var b strings.Builder
	for _, input := range m.inputs {
		b.WriteString(input.View())
		b.WriteString("\n")
	}
	if m.saving {
		b.WriteString("\nsaving...")
	}
	if m.errMsg != "" {
		b.WriteString("\nERROR: " + m.errMsg)
	}

	title := "NEW BOOK"
	if m.editing.ID != "" {
		title = "EDIT BOOK"
	}
	return renderPage(title, strings.TrimRight(b.String(), "\n"), "enter: save │ tab: next field │ esc: cancel")
}
