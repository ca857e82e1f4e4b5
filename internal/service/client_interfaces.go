// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_service_mock.go -package=mock

// SyncTrigger is how the entity services tell the sync engine that the
// local store committed a new transaction. Implemented by the engine
// coordinator; a no-op implementation serves offline-only setups.
type SyncTrigger interface {
	NotifyLocalChange()
}

// BookService is the application-facing book API. Every mutation is change
// tracked: the service diffs against the stored row, records which mapped
// fields changed, and nudges the sync engine.
type BookService interface {
	Create(ctx context.Context, book models.Book) (models.Book, error)
	Update(ctx context.Context, book models.Book) (models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	GetAll(ctx context.Context) ([]models.Book, error)
	Delete(ctx context.Context, id string) error
}

// ShelfService mirrors BookService for shelves, plus the two membership
// helpers the reading-list UI uses.
type ShelfService interface {
	Create(ctx context.Context, shelf models.Shelf) (models.Shelf, error)
	Update(ctx context.Context, shelf models.Shelf) (models.Shelf, error)
	Get(ctx context.Context, id string) (models.Shelf, error)
	GetAll(ctx context.Context) ([]models.Shelf, error)
	Delete(ctx context.Context, id string) error

	// AddBook puts a book onto a shelf; adding a book already present is a
	// no-op. RemoveBook is the inverse.
	AddBook(ctx context.Context, shelfID, bookID string) (models.Shelf, error)
	RemoveBook(ctx context.Context, shelfID, bookID string) (models.Shelf, error)
}
