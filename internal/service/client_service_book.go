// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

type clientBookService struct {
	books  store.BookRepository
	sync   SyncTrigger
	uuids  *utils.UUIDGenerator
	logger *logger.Logger
}

// NewClientBookService constructs the change-tracked book service.
func NewClientBookService(books store.BookRepository, sync SyncTrigger, logger *logger.Logger) BookService {
	return &clientBookService{
		books:  books,
		sync:   sync,
		uuids:  utils.NewUUIDGenerator(),
		logger: logger,
	}
}

func (b *clientBookService) Create(ctx context.Context, book models.Book) (models.Book, error) {
	log := logger.FromContext(ctx)

	if book.Title == "" {
		return models.Book{}, ErrInvalidDataProvided
	}
	if book.ID == "" {
		book.ID = b.uuids.Generate()
	}
	if book.ReadState == "" {
		book.ReadState = models.ToRead
	}

	// An insert implies the whole entity; no field list is recorded.
	saved, err := b.books.Save(ctx, book, nil)
	if err != nil {
		log.Err(err).
			Str("func", "clientBookService.Create").
			Str("book_id", book.ID).
			Msg("failed to create book")
		return models.Book{}, fmt.Errorf("create book: %w", err)
	}

	b.sync.NotifyLocalChange()
	return saved, nil
}

func (b *clientBookService) Update(ctx context.Context, book models.Book) (models.Book, error) {
	log := logger.FromContext(ctx)

	prev, err := b.books.Get(ctx, book.ID)
	if err != nil {
		return models.Book{}, fmt.Errorf("load existing book: %w", err)
	}

	changed := diffBookFields(prev, book)
	if len(changed) == 0 {
		return prev, nil
	}

	// Sync bookkeeping never comes from the caller.
	book.RemoteName = prev.RemoteName
	book.SystemFields = prev.SystemFields
	book.CreatedAt = prev.CreatedAt
	book.Deleted = false

	saved, err := b.books.Save(ctx, book, changed)
	if err != nil {
		log.Err(err).
			Str("func", "clientBookService.Update").
			Str("book_id", book.ID).
			Msg("failed to update book")
		return models.Book{}, fmt.Errorf("update book: %w", err)
	}

	b.sync.NotifyLocalChange()
	return saved, nil
}

func (b *clientBookService) Get(ctx context.Context, id string) (models.Book, error) {
	return b.books.Get(ctx, id)
}

func (b *clientBookService) GetAll(ctx context.Context) ([]models.Book, error) {
	return b.books.GetAll(ctx)
}

func (b *clientBookService) Delete(ctx context.Context, id string) error {
	if err := b.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	b.sync.NotifyLocalChange()
	return nil
}

// diffBookFields reports which syncable fields differ between two book
// revisions, as recordmap field keys. The combined reading dates count as
// one change each so the upstream processor re-uploads the pair.
func diffBookFields(prev, next models.Book) []string {
	var changed []string
	add := func(key recordmap.FieldKey) { changed = append(changed, string(key)) }

	if prev.Title != next.Title {
		add(recordmap.BookTitle)
	}
	if !slices.Equal(prev.Authors, next.Authors) {
		add(recordmap.BookAuthors)
	}
	if prev.Description != next.Description {
		add(recordmap.BookDescription)
	}
	if prev.ISBN != next.ISBN {
		add(recordmap.BookISBN)
	}
	if prev.PageCount != next.PageCount {
		add(recordmap.BookPageCount)
	}
	if prev.CurrentPage != next.CurrentPage {
		add(recordmap.BookCurrentPage)
	}
	if prev.Rating != next.Rating {
		add(recordmap.BookRating)
	}
	if prev.Notes != next.Notes {
		add(recordmap.BookNotes)
	}
	if prev.ReadState != next.ReadState {
		add(recordmap.BookReadState)
	}
	if prev.Sort != next.Sort {
		add(recordmap.BookSort)
	}
	if !timePtrEqual(prev.StartedReading, next.StartedReading) {
		add(recordmap.BookStartedReading)
	}
	if !timePtrEqual(prev.FinishedReading, next.FinishedReading) {
		add(recordmap.BookFinishedReading)
	}
	return changed
}
