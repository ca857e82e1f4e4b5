package tui

import "github.com/shelfsync/shelfsync/models"

type authDoneMsg struct {
	registered bool
	err        error
}

type booksLoadedMsg struct {
	books []models.Book
	err   error
}

type shelvesLoadedMsg struct {
	shelves []models.Shelf
	err     error
}

type bookSavedMsg struct {
	err error
}

type bookDeletedMsg struct {
	err error
}

type shelfSavedMsg struct {
	err error
}

type shelfDeletedMsg struct {
	err error
}

type statusLoadedMsg struct {
	status models.SyncStatus
	err    error
}

type fetchDoneMsg struct {
	err error
}
