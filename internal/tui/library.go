package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/models"
)

// libraryModel is the main screen: the book list.
type libraryModel struct {
	ctx   context.Context
	books service.BookService

	items   []models.Book
	idx     int
	loading bool
	status  string
	errMsg  string
}

func newLibraryModel(ctx context.Context, books service.BookService) libraryModel {
	return libraryModel{ctx: ctx, books: books, loading: true}
}

func (m libraryModel) cmdLoad() tea.Cmd {
	return func() tea.Msg {
		books, err := m.books.GetAll(m.ctx)
		return booksLoadedMsg{books: books, err: err}
	}
}

func (m libraryModel) cmdDelete(id string) tea.Cmd {
	return func() tea.Msg {
		return bookDeletedMsg{err: m.books.Delete(m.ctx, id)}
	}
}

func (m libraryModel) selected() (models.Book, bool) {
	if m.idx < 0 || m.idx >= len(m.items) {
		return models.Book{}, false
	}
	return m.items[m.idx], true
}

func (m libraryModel) update(msg tea.Msg) (libraryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case booksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.books
		if m.idx >= len(m.items) {
			m.idx = max(0, len(m.items)-1)
		}
		return m, nil

	case bookDeletedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.status = "book deleted"
		return m, m.cmdLoad()

	case fetchDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.status = "sync finished"
		return m, m.cmdLoad()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.idx > 0 {
				m.idx--
			}
		case "down", "j":
			if m.idx < len(m.items)-1 {
				m.idx++
			}
		case "d":
			if book, ok := m.selected(); ok {
				return m, m.cmdDelete(book.ID)
			}
		}
	}

	return m, nil
}

func readStateLabel(state models.ReadState) string {
	switch state {
	case models.Reading:
		return "reading"
	case models.Finished:
		return "finished"
	default:
		return "to read"
	}
}

func (m libraryModel) view() string {
	if m.loading {
		return renderPage("LIBRARY", "loading...", "")
	}

	var b strings.Builder
	if m.status != "" {
		b.WriteString("OK: " + m.status + "\n\n")
	}
	if m.errMsg != "" {
		b.WriteString("ERROR: " + m.errMsg + "\n\n")
	}

	if len(m.items) == 0 {
		b.WriteString("no books yet, press n to add one")
	}

	for i, book := range m.items {
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		authors := strings.Join(book.Authors, ", ")
		b.WriteString(fmt.Sprintf("%s %-34s %-22s %-8s %s\n",
			cursor,
			fitText(book.Title, 34),
			fitText(authors, 22),
			readStateLabel(book.ReadState),
			progress(book.CurrentPage, book.PageCount),
		))
	}

	return renderPage("LIBRARY", strings.TrimRight(b.String(), "\n"),
		"enter: detail │ n: new │ e: edit │ d: delete │ s: sync │ y: sync status │ tab: shelves")
}
