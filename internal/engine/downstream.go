// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/queue"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// Downstream pulls remote changes and applies them to the local store, type
// by type in [models.SyncedEntityTypes] order so that shelves can reference
// books delivered in the same cycle. A change token is persisted strictly
// after its batch has been applied; a crash in between re-delivers the
// batch, which the apply path tolerates (idempotent upserts).
type Downstream struct {
	logger    *logger.Logger
	service   remote.RecordService
	books     store.BookRepository
	shelves   store.ShelfRepository
	txlog     store.TransactionLogRepository
	syncState store.SyncStateRepository
	mapper    *recordmap.Mapper
	queue     *queue.Queue
	uuids     *utils.UUIDGenerator
	zone      string
	limit     int

	// onSchemaTooNew is invoked when a fetched record carries a mapping
	// version newer than this build understands. The coordinator disables
	// sync without erasing anything.
	onSchemaTooNew func()
}

// NewDownstream constructs the downstream processor.
func NewDownstream(deps Deps, onSchemaTooNew func()) *Downstream {
	return &Downstream{
		logger:         &logger.Logger{Logger: deps.Logger.With().Str("component", "downstream").Logger()},
		service:        deps.Service,
		books:          deps.Books,
		shelves:        deps.Shelves,
		txlog:          deps.Txlog,
		syncState:      deps.SyncState,
		mapper:         deps.Mapper,
		queue:          deps.Queue,
		uuids:          utils.NewUUIDGenerator(),
		zone:           deps.Zone,
		limit:          deps.FetchLimit,
		onSchemaTooNew: onSchemaTooNew,
	}
}

// EnqueueFetchRemoteChanges queues one full differential fetch cycle. done,
// if non-nil, is invoked with the final outcome; transient failures are
// retried by the queue before done fires. A schema-too-new record reports
// through the onSchemaTooNew callback instead of done.
func (d *Downstream) EnqueueFetchRemoteChanges(done func(error)) {
	d.queue.Enqueue(queue.Operation{
		Name: "downstream.fetch",
		Run: func(ctx context.Context) error {
			err := d.fetchAll(ctx)
			if err != nil && remote.IsTransient(err) {
				return err // queue retries; done fires on the final outcome
			}
			if errors.Is(err, remote.ErrSchemaTooNew) {
				d.logger.Warn().Msg("remote record schema newer than this build")
				if d.onSchemaTooNew != nil {
					d.onSchemaTooNew()
				}
				return nil
			}
			if done != nil {
				done(err)
			}
			return err
		},
	})
}

// FetchRecords queues a targeted fetch of the named records, used when the
// service notifies about specific changes outside the differential flow.
// Names the service no longer knows are removed locally.
func (d *Downstream) FetchRecords(entityType models.EntityType, names []string, done func(error)) {
	d.queue.Enqueue(queue.Operation{
		Name: "downstream.fetch_records",
		Run: func(ctx context.Context) error {
			err := d.fetchNamed(ctx, entityType, names)
			if err != nil && remote.IsTransient(err) {
				return err
			}
			if done != nil {
				done(err)
			}
			return err
		},
	})
}

// ResetChangeTracking drops every stored change token, forcing the next
// fetch cycle to be a full fetch.
func (d *Downstream) ResetChangeTracking(ctx context.Context) error {
	return d.syncState.DropChangeTokens(ctx)
}

func (d *Downstream) fetchAll(ctx context.Context) error {
	deviceID, err := d.syncState.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("read device id: %w", err)
	}

	for _, entityType := range models.SyncedEntityTypes {
		if err := d.fetchType(ctx, entityType, deviceID); err != nil {
			return err
		}
	}
	return nil
}

// fetchType drains the change feed for one entity type, page by page. An
// expired token or a vanished zone drops the cursor and falls back to a
// full fetch instead of failing permanently.
func (d *Downstream) fetchType(ctx context.Context, entityType models.EntityType, deviceID string) error {
	log := d.logger
	recovered := false

	for {
		token, err := d.syncState.GetChangeToken(ctx, entityType)
		if err != nil {
			return fmt.Errorf("read change token (%s): %w", entityType, err)
		}

		changes, err := d.service.FetchChanges(ctx, models.FetchChangesRequest{
			Zone:     d.zone,
			Type:     entityType,
			Token:    token,
			DeviceID: deviceID,
			Limit:    d.limit,
		})
		if fetchErr := err; errors.Is(fetchErr, remote.ErrTokenExpired) || errors.Is(fetchErr, remote.ErrZoneNotFound) {
			if recovered {
				return fmt.Errorf("fetch changes (%s) after token reset: %w", entityType, fetchErr)
			}
			recovered = true
			log.Warn().
				Str("entity_type", string(entityType)).
				Err(fetchErr).
				Msg("change cursor unusable, falling back to full fetch")
			if err = d.syncState.SetChangeToken(ctx, entityType, ""); err != nil {
				return fmt.Errorf("drop change token (%s): %w", entityType, err)
			}
			if errors.Is(fetchErr, remote.ErrZoneNotFound) {
				if err = d.service.EnsureZone(ctx, models.EnsureZoneRequest{Zone: d.zone, DeviceID: deviceID}); err != nil {
					return fmt.Errorf("re-ensure zone: %w", err)
				}
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("fetch changes (%s): %w", entityType, err)
		}

		if err = d.applyBatch(ctx, entityType, changes); err != nil {
			return err
		}

		// The token moves only after the batch is durably applied.
		if err = d.syncState.SetChangeToken(ctx, entityType, changes.NewToken); err != nil {
			return fmt.Errorf("persist change token (%s): %w", entityType, err)
		}

		if !changes.More {
			return nil
		}
	}
}

func (d *Downstream) applyBatch(ctx context.Context, entityType models.EntityType, changes models.RecordChanges) error {
	deleted := make(map[string]bool, len(changes.DeletedNames))
	for _, name := range changes.DeletedNames {
		deleted[name] = true
	}

	for _, record := range changes.Changed {
		if deleted[record.Name] {
			// A delete for the same name in the same batch wins.
			continue
		}
		if record.SchemaVersion > recordmap.SchemaVersion {
			return fmt.Errorf("%w: record %s carries schema %d, this build understands %d",
				remote.ErrSchemaTooNew, record.Name, record.SchemaVersion, recordmap.SchemaVersion)
		}
		if err := d.applyRecord(ctx, entityType, record); err != nil {
			return err
		}
	}

	for _, name := range changes.DeletedNames {
		if err := d.applyDelete(ctx, entityType, name); err != nil {
			return err
		}
	}
	return nil
}

func (d *Downstream) applyRecord(ctx context.Context, entityType models.EntityType, record models.RemoteRecord) error {
	switch entityType {
	case models.EntityBooks:
		return d.applyBook(ctx, record)
	case models.EntityShelves:
		return d.applyShelf(ctx, record)
	default:
		return fmt.Errorf("unknown entity type %q in change feed", entityType)
	}
}

func (d *Downstream) applyBook(ctx context.Context, record models.RemoteRecord) error {
	book, err := d.books.GetByRemoteName(ctx, record.Name)
	created := false
	if errors.Is(err, store.ErrBookNotFound) {
		book = models.Book{ID: d.uuids.Generate(), CreatedAt: time.Now().UTC()}
		created = true
	} else if err != nil {
		return fmt.Errorf("resolve book by remote name %s: %w", record.Name, err)
	}

	fields := record.Fields
	if !created {
		pending := d.pendingTransactions(ctx)
		if hasPendingDelete(pending, models.EntityBooks, book.ID) {
			return nil
		}
		fields = d.withoutLocallyEdited(pending, models.EntityBooks, book.ID, fields)
	}
	if err = d.mapper.ApplyBookFields(&book, fields); err != nil {
		return fmt.Errorf("apply fields of record %s: %w", record.Name, err)
	}

	book.RemoteName = record.Name
	book.SystemFields = record.SystemFields
	book.Deleted = false
	book.UpdatedAt = time.Now().UTC()
	return d.books.ApplyRemote(ctx, book)
}

func (d *Downstream) applyShelf(ctx context.Context, record models.RemoteRecord) error {
	shelf, err := d.shelves.GetByRemoteName(ctx, record.Name)
	created := false
	if errors.Is(err, store.ErrShelfNotFound) {
		shelf = models.Shelf{ID: d.uuids.Generate(), CreatedAt: time.Now().UTC()}
		created = true
	} else if err != nil {
		return fmt.Errorf("resolve shelf by remote name %s: %w", record.Name, err)
	}

	fields := record.Fields
	if !created {
		pending := d.pendingTransactions(ctx)
		if hasPendingDelete(pending, models.EntityShelves, shelf.ID) {
			return nil
		}
		fields = d.withoutLocallyEdited(pending, models.EntityShelves, shelf.ID, fields)
	}
	if err = d.mapper.ApplyShelfFields(&shelf, fields); err != nil {
		return fmt.Errorf("apply fields of record %s: %w", record.Name, err)
	}

	shelf.RemoteName = record.Name
	shelf.SystemFields = record.SystemFields
	shelf.Deleted = false
	shelf.UpdatedAt = time.Now().UTC()
	return d.shelves.ApplyRemote(ctx, shelf)
}

func (d *Downstream) applyDelete(ctx context.Context, entityType models.EntityType, name string) error {
	switch entityType {
	case models.EntityBooks:
		book, err := d.books.GetByRemoteName(ctx, name)
		if errors.Is(err, store.ErrBookNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve deleted book %s: %w", name, err)
		}
		return d.books.RemoveLocal(ctx, book.ID)
	case models.EntityShelves:
		shelf, err := d.shelves.GetByRemoteName(ctx, name)
		if errors.Is(err, store.ErrShelfNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("resolve deleted shelf %s: %w", name, err)
		}
		return d.shelves.RemoveLocal(ctx, shelf.ID)
	default:
		return fmt.Errorf("unknown entity type %q in delete feed", entityType)
	}
}

// pendingTransactions lists the unconfirmed local transactions. Errors fall
// back to an empty list: the remote value then applies unfiltered, which is
// the pre-tracking behavior.
func (d *Downstream) pendingTransactions(ctx context.Context) []models.LocalTransaction {
	confirmed, err := d.syncState.GetConfirmedTransactionID(ctx)
	if err != nil {
		return nil
	}
	pending, err := d.txlog.ListAfter(ctx, confirmed, 0)
	if err != nil {
		return nil
	}
	return pending
}

// hasPendingDelete reports whether an unconfirmed local transaction deletes
// the entity. An incoming remote update must not resurrect such a row: the
// local delete wins and its push is still on the way, so applying the
// update would make the entity reappear in listings until that push runs.
// The stale system fields this leaves behind are refreshed by the upstream
// conflict handling when the delete is rejected.
func hasPendingDelete(pending []models.LocalTransaction, entityType models.EntityType, entityID string) bool {
	for _, tx := range pending {
		if tx.EntityType == entityType && tx.EntityID == entityID && tx.Kind == models.TxDelete {
			return true
		}
	}
	return false
}

// withoutLocallyEdited removes from an incoming field map every field an
// unconfirmed local transaction has touched for the entity: the user's
// in-flight edit takes precedence over the sync-originated value, and the
// local value will be pushed upstream next.
func (d *Downstream) withoutLocallyEdited(pending []models.LocalTransaction, entityType models.EntityType, entityID string, fields map[string]any) map[string]any {
	if len(pending) == 0 {
		return fields
	}

	filtered := make(map[string]any, len(fields))
	for k, v := range fields {
		filtered[k] = v
	}
	for _, tx := range pending {
		if tx.EntityType != entityType || tx.EntityID != entityID {
			continue
		}
		if len(tx.ChangedFields) == 0 {
			// Whole-entity change: every local value wins.
			return map[string]any{}
		}
		for _, field := range tx.ChangedFields {
			if name, ok := d.mapper.RemoteField(recordmap.FieldKey(field)); ok {
				delete(filtered, name)
			}
		}
	}
	return filtered
}

// fetchNamed pulls specific records and applies them like a change batch.
// Names missing on the service are treated as deleted.
func (d *Downstream) fetchNamed(ctx context.Context, entityType models.EntityType, names []string) error {
	resp, err := d.service.FetchRecords(ctx, models.FetchRecordsRequest{
		Zone:   d.zone,
		Type:   entityType,
		Names:  names,
		Length: len(names),
	})
	if err != nil {
		return fmt.Errorf("fetch records (%s): %w", entityType, err)
	}

	return d.applyBatch(ctx, entityType, models.RecordChanges{
		Changed:      resp.Records,
		DeletedNames: resp.Missing,
	})
}
