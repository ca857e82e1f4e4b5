// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/mock"
	"github.com/shelfsync/shelfsync/models"
)

func newBookService(t *testing.T) (*mock.MockBookRepository, *mock.MockSyncTrigger, BookService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	books := mock.NewMockBookRepository(ctrl)
	sync := mock.NewMockSyncTrigger(ctrl)
	return books, sync, NewClientBookService(books, sync, logger.Nop())
}

func newShelfService(t *testing.T) (*mock.MockShelfRepository, *mock.MockSyncTrigger, ShelfService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	shelves := mock.NewMockShelfRepository(ctrl)
	sync := mock.NewMockSyncTrigger(ctrl)
	return shelves, sync, NewClientShelfService(shelves, sync, logger.Nop())
}

// ── Books ───────────────────────────────────────────────────────────────────

func TestClientBookService_CreateMintsIDAndNotifies(t *testing.T) {
	books, sync, svc := newBookService(t)
	ctx := context.Background()

	var saved models.Book
	books.EXPECT().
		Save(ctx, gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, book models.Book, _ []string) (models.Book, error) {
			saved = book
			return book, nil
		})
	sync.EXPECT().NotifyLocalChange()

	created, err := svc.Create(ctx, models.Book{Title: "The Dispossessed"})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID, "create must mint an ID")
	assert.Equal(t, models.ToRead, saved.ReadState, "read state defaults to to-read")
	assert.Equal(t, saved.ID, created.ID)
}

func TestClientBookService_CreateRequiresTitle(t *testing.T) {
	_, _, svc := newBookService(t)

	_, err := svc.Create(context.Background(), models.Book{})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestClientBookService_UpdateRecordsChangedFields(t *testing.T) {
	books, sync, svc := newBookService(t)
	ctx := context.Background()

	prev := models.Book{
		ID:           "book-1",
		Title:        "The Dispossessed",
		CurrentPage:  40,
		ReadState:    models.Reading,
		RemoteName:   "rec-1",
		SystemFields: []byte("rev-3"),
	}
	books.EXPECT().Get(ctx, "book-1").Return(prev, nil)

	next := prev
	next.CurrentPage = 120
	next.Rating = 5
	next.RemoteName = ""      // callers never control sync bookkeeping
	next.SystemFields = nil

	books.EXPECT().
		Save(ctx, gomock.Any(), []string{"book.current_page", "book.rating"}).
		DoAndReturn(func(_ context.Context, book models.Book, _ []string) (models.Book, error) {
			assert.Equal(t, "rec-1", book.RemoteName)
			assert.Equal(t, []byte("rev-3"), book.SystemFields)
			return book, nil
		})
	sync.EXPECT().NotifyLocalChange()

	updated, err := svc.Update(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, 120, updated.CurrentPage)
}

func TestClientBookService_UpdateWithoutChangesIsANoOp(t *testing.T) {
	books, _, svc := newBookService(t)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	prev := models.Book{ID: "book-1", Title: "Piranesi", StartedReading: &started}
	books.EXPECT().Get(ctx, "book-1").Return(prev, nil)

	// Same content through a distinct pointer: still no change.
	same := started
	got, err := svc.Update(ctx, models.Book{ID: "book-1", Title: "Piranesi", StartedReading: &same})
	require.NoError(t, err)
	assert.Equal(t, prev, got)
}

func TestClientBookService_DeleteNotifies(t *testing.T) {
	books, sync, svc := newBookService(t)
	ctx := context.Background()

	books.EXPECT().Delete(ctx, "book-1").Return(nil)
	sync.EXPECT().NotifyLocalChange()

	require.NoError(t, svc.Delete(ctx, "book-1"))
}

func TestDiffBookFields_CoversReadingDates(t *testing.T) {
	started := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	finished := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	prev := models.Book{Title: "Piranesi"}
	next := prev
	next.StartedReading = &started
	next.FinishedReading = &finished

	assert.Equal(t, []string{"book.started_reading", "book.finished_reading"}, diffBookFields(prev, next))
}

// ── Shelves ─────────────────────────────────────────────────────────────────

func TestClientShelfService_AddBookAppendsOnce(t *testing.T) {
	shelves, sync, svc := newShelfService(t)
	ctx := context.Background()

	shelf := models.Shelf{ID: "shelf-1", Name: "Favourites", BookIDs: []string{"book-1"}}
	shelves.EXPECT().Get(ctx, "shelf-1").Return(shelf, nil)
	shelves.EXPECT().
		Save(ctx, gomock.Any(), []string{"shelf.book_ids"}).
		DoAndReturn(func(_ context.Context, s models.Shelf, _ []string) (models.Shelf, error) {
			assert.Equal(t, []string{"book-1", "book-2"}, s.BookIDs)
			return s, nil
		})
	sync.EXPECT().NotifyLocalChange()

	_, err := svc.AddBook(ctx, "shelf-1", "book-2")
	require.NoError(t, err)

	// Already shelved: no save, no notification.
	shelves.EXPECT().Get(ctx, "shelf-1").Return(shelf, nil)
	got, err := svc.AddBook(ctx, "shelf-1", "book-1")
	require.NoError(t, err)
	assert.Equal(t, shelf.BookIDs, got.BookIDs)
}

func TestClientShelfService_RemoveBook(t *testing.T) {
	shelves, sync, svc := newShelfService(t)
	ctx := context.Background()

	shelf := models.Shelf{ID: "shelf-1", Name: "Favourites", BookIDs: []string{"book-1", "book-2", "book-3"}}
	shelves.EXPECT().Get(ctx, "shelf-1").Return(shelf, nil)
	shelves.EXPECT().
		Save(ctx, gomock.Any(), []string{"shelf.book_ids"}).
		DoAndReturn(func(_ context.Context, s models.Shelf, _ []string) (models.Shelf, error) {
			assert.Equal(t, []string{"book-1", "book-3"}, s.BookIDs)
			return s, nil
		})
	sync.EXPECT().NotifyLocalChange()

	_, err := svc.RemoveBook(ctx, "shelf-1", "book-2")
	require.NoError(t, err)

	// Not on the shelf: nothing to do.
	shelves.EXPECT().Get(ctx, "shelf-1").Return(shelf, nil)
	_, err = svc.RemoveBook(ctx, "shelf-1", "book-9")
	require.NoError(t, err)
}

func TestClientShelfService_UpdateDiffsFields(t *testing.T) {
	shelves, sync, svc := newShelfService(t)
	ctx := context.Background()

	prev := models.Shelf{ID: "shelf-1", Name: "Favourites", Sort: 1}
	shelves.EXPECT().Get(ctx, "shelf-1").Return(prev, nil)
	shelves.EXPECT().
		Save(ctx, gomock.Any(), []string{"shelf.name", "shelf.sort"}).
		DoAndReturn(func(_ context.Context, s models.Shelf, _ []string) (models.Shelf, error) {
			return s, nil
		})
	sync.EXPECT().NotifyLocalChange()

	_, err := svc.Update(ctx, models.Shelf{ID: "shelf-1", Name: "Keepers", Sort: 2})
	require.NoError(t, err)
}
