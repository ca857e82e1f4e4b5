package tui

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

// AuthFlow is the slice of the record service the sign-in screens use.
type AuthFlow interface {
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) error
}

// SyncController is the slice of the sync coordinator the UI drives: the
// diagnostics screen reads Status, and the manual sync hotkey queues a
// fetch plus an upload pass.
type SyncController interface {
	Status(ctx context.Context) (models.SyncStatus, error)
	FetchRemoteChanges(done func(error))
	NotifyLocalChange()
}
