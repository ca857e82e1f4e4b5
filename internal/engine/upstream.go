// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/queue"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// Upstream drains the local transaction log past the confirmed checkpoint
// and pushes the resulting creates, updates and deletes to the record
// service. Transactions are coalesced per entity before pushing, so an
// entity updated five times locally produces one remote write, and an
// entity created then deleted before its first upload produces none.
//
// The checkpoint advances only after the whole batch is confirmed; a crash
// mid-push replays the batch, which the service tolerates (the replayed
// records carry the system fields stored on the previous confirmation).
type Upstream struct {
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

	mu       sync.Mutex
	watching bool
	inFlight bool
}

// NewUpstream constructs the upstream processor.
func NewUpstream(deps Deps) *Upstream {
	limit := deps.FetchLimit
	if limit <= 0 {
		limit = 200
	}
	return &Upstream{
		logger:    &logger.Logger{Logger: deps.Logger.With().Str("component", "upstream").Logger()},
		service:   deps.Service,
		books:     deps.Books,
		shelves:   deps.Shelves,
		txlog:     deps.Txlog,
		syncState: deps.SyncState,
		mapper:    deps.Mapper,
		queue:     deps.Queue,
		uuids:     utils.NewUUIDGenerator(),
		zone:      deps.Zone,
		limit:     limit,
	}
}

// Start begins watching the transaction log and queues a catch-up push for
// everything not yet confirmed.
func (u *Upstream) Start() {
	u.mu.Lock()
	u.watching = true
	u.inFlight = false
	u.mu.Unlock()
	u.EnqueueUploadOperations()
}

// Stop stops watching. A push already enqueued keeps running unless the
// coordinator cancels the queue.
func (u *Upstream) Stop() {
	u.mu.Lock()
	u.watching = false
	u.mu.Unlock()
}

// Reset drops the confirmed checkpoint, forcing re-derivation from the full
// transaction history on the next start.
func (u *Upstream) Reset(ctx context.Context) error {
	u.mu.Lock()
	u.inFlight = false
	u.mu.Unlock()
	return u.syncState.SetConfirmedTransactionID(ctx, 0)
}

// EnqueueUploadOperations queues one push cycle. A no-op while a cycle is
// already queued or running; the running cycle re-enqueues itself when new
// transactions arrived in the meantime, so nothing is lost.
func (u *Upstream) EnqueueUploadOperations() {
	u.mu.Lock()
	if !u.watching || u.inFlight {
		u.mu.Unlock()
		return
	}
	u.inFlight = true
	u.mu.Unlock()

	u.queue.Enqueue(queue.Operation{
		Name:   "upstream.push",
		Run:    u.push,
		Cancel: u.releasePush,
	})
}

// releasePush drops the single-cycle guard when the queue abandons a push
// without retrying it (cancelled while queued or between retry attempts).
// Without this, a cancelled push would block every later enqueue until the
// next Start.
func (u *Upstream) releasePush() {
	u.mu.Lock()
	u.inFlight = false
	u.mu.Unlock()
}

// PendingPushCount reports how many local transactions are past the
// confirmed checkpoint.
func (u *Upstream) PendingPushCount(ctx context.Context) (int, error) {
	confirmed, err := u.syncState.GetConfirmedTransactionID(ctx)
	if err != nil {
		return 0, err
	}
	return u.txlog.Count(ctx, confirmed)
}

// LatestConfirmedTransaction returns the newest transaction whose upload
// has been confirmed, or nil when nothing was confirmed yet (or the log was
// cleared since).
func (u *Upstream) LatestConfirmedTransaction(ctx context.Context) (*models.LocalTransaction, error) {
	confirmed, err := u.syncState.GetConfirmedTransactionID(ctx)
	if err != nil {
		return nil, err
	}
	if confirmed == 0 {
		return nil, nil
	}
	tx, err := u.txlog.Get(ctx, confirmed)
	if errors.Is(err, store.ErrTransactionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// pushAction is the coalesced outcome of all pending transactions for one
// entity.
type pushAction struct {
	entityType models.EntityType
	entityID   string
	delete     bool

	// changedFields is the union of mapped fields the transactions
	// touched. Empty means the whole entity (insert or unknown).
	changedFields map[recordmap.FieldKey]bool
}

func (u *Upstream) push(ctx context.Context) error {
	followUp, err := u.pushOnce(ctx)
	if err != nil && remote.IsTransient(err) {
		// The queue retries this Run in place; hold the guard so no
		// duplicate cycle is enqueued in the meantime.
		return err
	}

	u.mu.Lock()
	u.inFlight = false
	u.mu.Unlock()

	if err == nil && followUp {
		u.EnqueueUploadOperations()
	}
	return err
}

// pushOnce runs one full push cycle. followUp reports that the log may hold
// more transactions than one cycle reads.
func (u *Upstream) pushOnce(ctx context.Context) (followUp bool, err error) {
	confirmed, err := u.syncState.GetConfirmedTransactionID(ctx)
	if err != nil {
		return false, fmt.Errorf("read confirmed checkpoint: %w", err)
	}

	txs, err := u.txlog.ListAfter(ctx, confirmed, u.limit)
	if err != nil {
		return false, fmt.Errorf("read transaction log: %w", err)
	}
	if len(txs) == 0 {
		return false, nil
	}

	deviceID, err := u.syncState.DeviceID(ctx)
	if err != nil {
		return false, fmt.Errorf("read device id: %w", err)
	}

	plan := coalesce(txs)
	for _, entityType := range models.SyncedEntityTypes {
		if err = u.pushType(ctx, entityType, plan[entityType], deviceID); err != nil {
			return false, err
		}
	}

	last := txs[len(txs)-1].ID
	if err = u.syncState.SetConfirmedTransactionID(ctx, last); err != nil {
		return false, fmt.Errorf("advance confirmed checkpoint: %w", err)
	}
	u.logger.Debug().Int64("confirmed", last).Int("transactions", len(txs)).Msg("push cycle confirmed")

	return len(txs) == u.limit, nil
}

// coalesce folds an ordered transaction run into one final action per
// entity, preserving type grouping. Within one run only the final state
// matters: update-then-delete pushes a delete, create-then-delete pushes
// nothing (the entity never left this device).
func coalesce(txs []models.LocalTransaction) map[models.EntityType][]pushAction {
	order := make([]string, 0, len(txs))
	byKey := make(map[string]*pushAction, len(txs))

	for _, tx := range txs {
		key := string(tx.EntityType) + "/" + tx.EntityID
		action, ok := byKey[key]
		if !ok {
			action = &pushAction{
				entityType:    tx.EntityType,
				entityID:      tx.EntityID,
				changedFields: make(map[recordmap.FieldKey]bool),
			}
			byKey[key] = action
			order = append(order, key)
		}

		switch tx.Kind {
		case models.TxDelete:
			action.delete = true
		default:
			action.delete = false
			if len(tx.ChangedFields) == 0 {
				// Insert or whole-entity update: all fields.
				action.changedFields = make(map[recordmap.FieldKey]bool)
			}
			for _, f := range tx.ChangedFields {
				action.changedFields[recordmap.FieldKey(f)] = true
			}
		}
	}

	plan := make(map[models.EntityType][]pushAction)
	for _, key := range order {
		action := byKey[key]
		plan[action.entityType] = append(plan[action.entityType], *action)
	}
	return plan
}

// pushRecord pairs an outgoing record with the local entity it came from.
type pushRecord struct {
	localID       string
	record        models.RemoteRecord
	changedFields map[recordmap.FieldKey]bool
}

func (u *Upstream) pushType(ctx context.Context, entityType models.EntityType, actions []pushAction, deviceID string) error {
	if len(actions) == 0 {
		return nil
	}

	var (
		saves   []pushRecord
		deletes []models.DeleteEntry
		purge   []string // local IDs to remove once the remote delete confirms
	)

	for _, action := range actions {
		if action.delete {
			entry, localID, err := u.buildDelete(ctx, entityType, action.entityID)
			if err != nil {
				return err
			}
			if entry == nil {
				// Never uploaded: nothing to push, just purge the
				// soft-deleted row.
				if localID != "" {
					if err = u.removeLocal(ctx, entityType, localID); err != nil {
						return err
					}
				}
				continue
			}
			deletes = append(deletes, *entry)
			purge = append(purge, localID)
			continue
		}

		rec, err := u.buildSave(ctx, entityType, action)
		if err != nil {
			return err
		}
		if rec != nil {
			saves = append(saves, *rec)
		}
	}

	if len(saves) > 0 {
		if err := u.saveAll(ctx, entityType, saves, deviceID); err != nil {
			return err
		}
	}

	if len(deletes) > 0 {
		if err := u.deleteAll(ctx, entityType, deletes, purge, deviceID); err != nil {
			return err
		}
	}
	return nil
}

// buildDelete resolves one local delete. Returns a nil entry when the
// entity was never uploaded (create-then-delete coalesces to nothing) or
// the row is already gone.
func (u *Upstream) buildDelete(ctx context.Context, entityType models.EntityType, entityID string) (*models.DeleteEntry, string, error) {
	remoteName, systemFields, found, err := u.remoteIdentity(ctx, entityType, entityID)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", nil
	}
	if len(systemFields) == 0 {
		return nil, entityID, nil
	}
	return &models.DeleteEntry{
		Type:         entityType,
		Name:         remoteName,
		SystemFields: systemFields,
	}, entityID, nil
}

func (u *Upstream) remoteIdentity(ctx context.Context, entityType models.EntityType, entityID string) (remoteName string, systemFields []byte, found bool, err error) {
	switch entityType {
	case models.EntityBooks:
		book, err := u.books.Get(ctx, entityID)
		if errors.Is(err, store.ErrBookNotFound) {
			return "", nil, false, nil
		}
		if err != nil {
			return "", nil, false, fmt.Errorf("load book %s: %w", entityID, err)
		}
		return book.RemoteName, book.SystemFields, true, nil
	case models.EntityShelves:
		shelf, err := u.shelves.Get(ctx, entityID)
		if errors.Is(err, store.ErrShelfNotFound) {
			return "", nil, false, nil
		}
		if err != nil {
			return "", nil, false, fmt.Errorf("load shelf %s: %w", entityID, err)
		}
		return shelf.RemoteName, shelf.SystemFields, true, nil
	default:
		return "", nil, false, fmt.Errorf("unknown entity type %q in transaction log", entityType)
	}
}

// buildSave loads the entity and produces its outgoing record: a create
// when it has no stored system fields, an update carrying them otherwise.
// Returns nil when the row no longer exists or is soft-deleted (a delete
// transaction follows in the log).
func (u *Upstream) buildSave(ctx context.Context, entityType models.EntityType, action pushAction) (*pushRecord, error) {
	record := models.RemoteRecord{
		Type:          entityType,
		SchemaVersion: recordmap.SchemaVersion,
	}
	var (
		localID      string
		remoteName   string
		systemFields []byte
	)

	switch entityType {
	case models.EntityBooks:
		book, err := u.books.Get(ctx, action.entityID)
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load book %s: %w", action.entityID, err)
		}
		if book.Deleted {
			return nil, nil
		}
		localID, remoteName, systemFields = book.ID, book.RemoteName, book.SystemFields
		record.Fields = u.mapper.BookFields(book)
	case models.EntityShelves:
		shelf, err := u.shelves.Get(ctx, action.entityID)
		if errors.Is(err, store.ErrShelfNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load shelf %s: %w", action.entityID, err)
		}
		if shelf.Deleted {
			return nil, nil
		}
		localID, remoteName, systemFields = shelf.ID, shelf.RemoteName, shelf.SystemFields
		record.Fields = u.mapper.ShelfFields(shelf)
	default:
		return nil, fmt.Errorf("unknown entity type %q in transaction log", entityType)
	}

	if remoteName == "" {
		remoteName = u.uuids.Generate()
	}
	record.Name = remoteName
	record.SystemFields = systemFields

	return &pushRecord{
		localID:       localID,
		record:        record,
		changedFields: action.changedFields,
	}, nil
}

func (u *Upstream) saveAll(ctx context.Context, entityType models.EntityType, saves []pushRecord, deviceID string) error {
	records := make([]models.RemoteRecord, len(saves))
	for i, s := range saves {
		records[i] = s.record
	}

	saved, err := u.service.SaveRecords(ctx, models.SaveRecordsRequest{
		Zone:     u.zone,
		DeviceID: deviceID,
		Records:  records,
		Length:   len(records),
	})
	if errors.Is(err, remote.ErrConflict) || errors.Is(err, remote.ErrIDCollision) {
		return u.reconcileAndRetry(ctx, entityType, saves, deviceID, err)
	}
	if err != nil {
		return fmt.Errorf("save records (%s): %w", entityType, err)
	}

	return u.confirmSaves(ctx, entityType, saves, saved)
}

// reconcileAndRetry handles a rejected save batch: someone else updated a
// record after our last fetch (stale system fields), or a create hit a name
// that already exists. Both resolve the same way: fetch the current server
// revision, adopt its system fields, keep local values for the fields this
// push carries, and retry once. A second rejection escalates.
func (u *Upstream) reconcileAndRetry(ctx context.Context, entityType models.EntityType, saves []pushRecord, deviceID string, cause error) error {
	u.logger.Warn().
		Str("entity_type", string(entityType)).
		Err(cause).
		Msg("save batch rejected, reconciling with server state")

	names := make([]string, len(saves))
	byName := make(map[string]*pushRecord, len(saves))
	for i := range saves {
		names[i] = saves[i].record.Name
		byName[saves[i].record.Name] = &saves[i]
	}

	resp, err := u.service.FetchRecords(ctx, models.FetchRecordsRequest{
		Zone:   u.zone,
		Type:   entityType,
		Names:  names,
		Length: len(names),
	})
	if err != nil {
		return fmt.Errorf("refetch contested records (%s): %w", entityType, err)
	}

	for _, serverRec := range resp.Records {
		local, ok := byName[serverRec.Name]
		if !ok {
			continue
		}
		if err = u.mergeServerRecord(ctx, entityType, *local, serverRec); err != nil {
			return err
		}
		// Retry as an update against the revision we just fetched.
		local.record.SystemFields = serverRec.SystemFields
	}
	// Names in resp.Missing stay creates: the record vanished between the
	// rejection and the refetch, so the retry recreates it.
	for _, name := range resp.Missing {
		if local, ok := byName[name]; ok {
			local.record.SystemFields = nil
		}
	}

	records := make([]models.RemoteRecord, len(saves))
	for i, s := range saves {
		records[i] = s.record
	}
	saved, err := u.service.SaveRecords(ctx, models.SaveRecordsRequest{
		Zone:     u.zone,
		DeviceID: deviceID,
		Records:  records,
		Length:   len(records),
	})
	if err != nil {
		return fmt.Errorf("save records (%s) after reconcile: %w", entityType, err)
	}
	return u.confirmSaves(ctx, entityType, saves, saved)
}

// mergeServerRecord folds the server's field values into the local entity,
// except for the fields this push is carrying: the local edit wins and will
// overwrite the server value on the retry.
func (u *Upstream) mergeServerRecord(ctx context.Context, entityType models.EntityType, local pushRecord, serverRec models.RemoteRecord) error {
	if len(local.changedFields) == 0 {
		// Whole-entity push: nothing of the server's survives the retry,
		// so there is nothing to merge.
		return nil
	}

	fields := make(map[string]any, len(serverRec.Fields))
	for k, v := range serverRec.Fields {
		fields[k] = v
	}
	for key := range local.changedFields {
		if name, ok := u.mapper.RemoteField(key); ok {
			delete(fields, name)
		}
	}

	switch entityType {
	case models.EntityBooks:
		book, err := u.books.Get(ctx, local.localID)
		if err != nil {
			return fmt.Errorf("load book %s for merge: %w", local.localID, err)
		}
		if err = u.mapper.ApplyBookFields(&book, fields); err != nil {
			return fmt.Errorf("merge record %s: %w", serverRec.Name, err)
		}
		return u.books.ApplyRemote(ctx, book)
	case models.EntityShelves:
		shelf, err := u.shelves.Get(ctx, local.localID)
		if err != nil {
			return fmt.Errorf("load shelf %s for merge: %w", local.localID, err)
		}
		if err = u.mapper.ApplyShelfFields(&shelf, fields); err != nil {
			return fmt.Errorf("merge record %s: %w", serverRec.Name, err)
		}
		return u.shelves.ApplyRemote(ctx, shelf)
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}

// confirmSaves stores the fresh system fields the service returned, marking
// each entity as uploaded.
func (u *Upstream) confirmSaves(ctx context.Context, entityType models.EntityType, saves []pushRecord, saved []models.RemoteRecord) error {
	byName := make(map[string]string, len(saves)) // remote name → local id
	for _, s := range saves {
		byName[s.record.Name] = s.localID
	}

	for _, rec := range saved {
		localID, ok := byName[rec.Name]
		if !ok {
			continue
		}
		var err error
		switch entityType {
		case models.EntityBooks:
			err = u.books.SetSystemFields(ctx, localID, rec.Name, rec.SystemFields)
		case models.EntityShelves:
			err = u.shelves.SetSystemFields(ctx, localID, rec.Name, rec.SystemFields)
		}
		if err != nil {
			return fmt.Errorf("store system fields for %s: %w", localID, err)
		}
	}
	return nil
}

func (u *Upstream) deleteAll(ctx context.Context, entityType models.EntityType, deletes []models.DeleteEntry, purge []string, deviceID string) error {
	err := u.service.DeleteRecords(ctx, models.DeleteRecordsRequest{
		Zone:     u.zone,
		DeviceID: deviceID,
		Entries:  deletes,
		Length:   len(deletes),
	})
	if errors.Is(err, remote.ErrConflict) {
		// Someone updated the record after our last fetch. The local
		// delete still wins: refresh the metadata and retry once.
		if err = u.refreshDeleteMetadata(ctx, entityType, deletes); err != nil {
			return err
		}
		err = u.service.DeleteRecords(ctx, models.DeleteRecordsRequest{
			Zone:     u.zone,
			DeviceID: deviceID,
			Entries:  deletes,
			Length:   len(deletes),
		})
		if err != nil {
			return fmt.Errorf("delete records (%s) after reconcile: %w", entityType, err)
		}
	} else if err != nil {
		return fmt.Errorf("delete records (%s): %w", entityType, err)
	}

	for _, localID := range purge {
		if err := u.removeLocal(ctx, entityType, localID); err != nil {
			return err
		}
	}
	return nil
}

func (u *Upstream) refreshDeleteMetadata(ctx context.Context, entityType models.EntityType, deletes []models.DeleteEntry) error {
	names := make([]string, len(deletes))
	for i, entry := range deletes {
		names[i] = entry.Name
	}
	resp, err := u.service.FetchRecords(ctx, models.FetchRecordsRequest{
		Zone:   u.zone,
		Type:   entityType,
		Names:  names,
		Length: len(names),
	})
	if err != nil {
		return fmt.Errorf("refetch records for delete (%s): %w", entityType, err)
	}

	fresh := make(map[string][]byte, len(resp.Records))
	for _, rec := range resp.Records {
		fresh[rec.Name] = rec.SystemFields
	}
	for i := range deletes {
		if sf, ok := fresh[deletes[i].Name]; ok {
			deletes[i].SystemFields = sf
		}
	}
	return nil
}

func (u *Upstream) removeLocal(ctx context.Context, entityType models.EntityType, localID string) error {
	switch entityType {
	case models.EntityBooks:
		return u.books.RemoveLocal(ctx, localID)
	case models.EntityShelves:
		return u.shelves.RemoveLocal(ctx, localID)
	default:
		return fmt.Errorf("unknown entity type %q", entityType)
	}
}
