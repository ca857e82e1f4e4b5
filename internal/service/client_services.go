package service

import (
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/store"
)

// ClientServices bundles the local library operations the UI works with.
type ClientServices struct {
	Books   BookService
	Shelves ShelfService
}

// NewClientServices constructs the client services over the local store.
// Every mutation reports to the sync trigger so pending edits get pushed.
func NewClientServices(storages *store.ClientStorages, sync SyncTrigger, log *logger.Logger) *ClientServices {
	return &ClientServices{
		Books:   NewClientBookService(storages.Books, sync, log),
		Shelves: NewClientShelfService(storages.Shelves, sync, log),
	}
}
