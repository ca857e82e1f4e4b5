package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shelfsync/shelfsync/models"
)

type detailModel struct {
	book models.Book
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func (m detailModel) view() string {
	var b strings.Builder
	book := m.book

	b.WriteString(fmt.Sprintf("Title:     %s\n", valueOrDash(book.Title)))
	b.WriteString(fmt.Sprintf("Authors:   %s\n", valueOrDash(strings.Join(book.Authors, ", "))))
	b.WriteString(fmt.Sprintf("ISBN:      %s\n", valueOrDash(book.ISBN)))
	b.WriteString(fmt.Sprintf("State:     %s\n", readStateLabel(book.ReadState)))
	b.WriteString(fmt.Sprintf("Progress:  %s\n", progress(book.CurrentPage, book.PageCount)))
	if book.Rating > 0 {
		b.WriteString(fmt.Sprintf("Rating:    %s\n", strings.Repeat("★", book.Rating)))
	}
	b.WriteString(fmt.Sprintf("Started:   %s\n", dateOrDash(book.StartedReading)))
	b.WriteString(fmt.Sprintf("Finished:  %s\n", dateOrDash(book.FinishedReading)))
	if book.Description != "" {
		b.WriteString("\n" + book.Description + "\n")
	}
	if book.Notes != "" {
		b.WriteString("\nNotes: " + book.Notes + "\n")
	}

	return renderPage("BOOK", strings.TrimRight(b.String(), "\n"), "e: edit │ esc: back")
}
