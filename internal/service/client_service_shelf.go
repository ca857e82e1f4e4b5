// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

type clientShelfService struct {
	shelves store.ShelfRepository
	sync    SyncTrigger
	uuids   *utils.UUIDGenerator
	logger  *logger.Logger
}

// NewClientShelfService constructs the change-tracked shelf service.
func NewClientShelfService(shelves store.ShelfRepository, sync SyncTrigger, logger *logger.Logger) ShelfService {
	return &clientShelfService{
		shelves: shelves,
		sync:    sync,
		uuids:   utils.NewUUIDGenerator(),
		logger:  logger,
	}
}

func (s *clientShelfService) Create(ctx context.Context, shelf models.Shelf) (models.Shelf, error) {
	log := logger.FromContext(ctx)

	if shelf.Name == "" {
		return models.Shelf{}, ErrInvalidDataProvided
	}
	if shelf.ID == "" {
		shelf.ID = s.uuids.Generate()
	}

	saved, err := s.shelves.Save(ctx, shelf, nil)
	if err != nil {
		log.Err(err).
			Str("func", "clientShelfService.Create").
			Str("shelf_id", shelf.ID).
			Msg("failed to create shelf")
		return models.Shelf{}, fmt.Errorf("create shelf: %w", err)
	}

	s.sync.NotifyLocalChange()
	return saved, nil
}

func (s *clientShelfService) Update(ctx context.Context, shelf models.Shelf) (models.Shelf, error) {
	prev, err := s.shelves.Get(ctx, shelf.ID)
	if err != nil {
		return models.Shelf{}, fmt.Errorf("load existing shelf: %w", err)
	}

	changed := diffShelfFields(prev, shelf)
	if len(changed) == 0 {
		return prev, nil
	}

	shelf.RemoteName = prev.RemoteName
	shelf.SystemFields = prev.SystemFields
	shelf.CreatedAt = prev.CreatedAt
	shelf.Deleted = false

	saved, err := s.shelves.Save(ctx, shelf, changed)
	if err != nil {
		return models.Shelf{}, fmt.Errorf("update shelf: %w", err)
	}

	s.sync.NotifyLocalChange()
	return saved, nil
}

func (s *clientShelfService) Get(ctx context.Context, id string) (models.Shelf, error) {
	return s.shelves.Get(ctx, id)
}

func (s *clientShelfService) GetAll(ctx context.Context) ([]models.Shelf, error) {
	return s.shelves.GetAll(ctx)
}

func (s *clientShelfService) Delete(ctx context.Context, id string) error {
	if err := s.shelves.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete shelf: %w", err)
	}
	s.sync.NotifyLocalChange()
	return nil
}

func (s *clientShelfService) AddBook(ctx context.Context, shelfID, bookID string) (models.Shelf, error) {
	shelf, err := s.shelves.Get(ctx, shelfID)
	if err != nil {
		return models.Shelf{}, fmt.Errorf("load shelf: %w", err)
	}
	if slices.Contains(shelf.BookIDs, bookID) {
		return shelf, nil
	}

	next := shelf
	next.BookIDs = append(append([]string(nil), shelf.BookIDs...), bookID)
	return s.saveMembership(ctx, next)
}

func (s *clientShelfService) RemoveBook(ctx context.Context, shelfID, bookID string) (models.Shelf, error) {
	shelf, err := s.shelves.Get(ctx, shelfID)
	if err != nil {
		return models.Shelf{}, fmt.Errorf("load shelf: %w", err)
	}
	idx := slices.Index(shelf.BookIDs, bookID)
	if idx < 0 {
		return shelf, nil
	}

	next := shelf
	next.BookIDs = slices.Delete(append([]string(nil), shelf.BookIDs...), idx, idx+1)
	return s.saveMembership(ctx, next)
}

func (s *clientShelfService) saveMembership(ctx context.Context, shelf models.Shelf) (models.Shelf, error) {
	saved, err := s.shelves.Save(ctx, shelf, []string{string(recordmap.ShelfBookIDs)})
	if err != nil {
		return models.Shelf{}, fmt.Errorf("update shelf membership: %w", err)
	}
	s.sync.NotifyLocalChange()
	return saved, nil
}

// diffShelfFields reports which syncable fields differ between two shelf
// revisions, as recordmap field keys.
func diffShelfFields(prev, next models.Shelf) []string {
	var changed []string
	if prev.Name != next.Name {
		changed = append(changed, string(recordmap.ShelfName))
	}
	if prev.Sort != next.Sort {
		changed = append(changed, string(recordmap.ShelfSort))
	}
	if !slices.Equal(prev.BookIDs, next.BookIDs) {
		changed = append(changed, string(recordmap.ShelfBookIDs))
	}
	return changed
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
