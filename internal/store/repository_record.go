// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/models"
)

const defaultChangePageSize = 200

// recordSystemFields is the decoded form of the opaque blob clients carry.
// Clients must treat it as opaque; only this repository reads it.
type recordSystemFields struct {
	Name       string    `json:"name"`
	Revision   int64     `json:"revision"`
	ModifiedAt time.Time `json:"modified_at"`
}

// recordRepository is the PostgreSQL-backed implementation of
// [RecordRepository].
type recordRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewRecordRepository constructs a [RecordRepository] backed by the
// provided database connection and logger.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureZone creates the account's zone if it does not exist. The insert is
// a no-op on conflict, so concurrent initializers are safe.
func (r *recordRepository) EnsureZone(ctx context.Context, accountID int64, zone string) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, ensureZone, accountID, zone); err != nil {
		log.Err(err).Str("func", "*recordRepository.EnsureZone").Msg("error ensuring zone")
		return r.wrapDBError("ensure zone", err)
	}

	return nil
}

// EnsureSubscription registers deviceID for change notifications on the
// zone. Idempotent.
func (r *recordRepository) EnsureSubscription(ctx context.Context, accountID int64, zone, deviceID string) error {
	log := logger.FromContext(ctx)

	zoneID, _, err := r.findZone(ctx, accountID, zone)
	if err != nil {
		return err
	}

	if _, err = r.db.ExecContext(ctx, ensureSubscription, zoneID, deviceID); err != nil {
		log.Err(err).Str("func", "*recordRepository.EnsureSubscription").Msg("error ensuring subscription")
		return r.wrapDBError("ensure subscription", err)
	}

	return nil
}

// SaveRecords applies the batch atomically: either every record is stored
// with a bumped revision and a fresh feed sequence, or none is. Records
// without system fields are creates; a live row under the same name fails
// the batch with [ErrRecordNameExists]. Records carrying system fields are
// optimistic updates validated against the stored revision.
func (r *recordRepository) SaveRecords(ctx context.Context, accountID int64, req models.SaveRecordsRequest) ([]models.RemoteRecord, error) {
	log := logger.FromContext(ctx)

	zoneID, _, err := r.findZone(ctx, accountID, req.Zone)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save records transaction: %w", err)
	}
	defer tx.Rollback()

	saved := make([]models.RemoteRecord, 0, len(req.Records))
	for _, record := range req.Records {
		var (
			storedRev int64
			deleted   bool
			exists    = true
		)
		err = tx.QueryRowContext(ctx, findRecordForUpdate, zoneID, string(record.Type), record.Name).
			Scan(&storedRev, &deleted)
		if errors.Is(err, sql.ErrNoRows) {
			exists = false
		} else if err != nil {
			log.Err(err).Str("func", "*recordRepository.SaveRecords").Msg("error locking record row")
			return nil, r.wrapDBError("lock record", err)
		}

		if len(record.SystemFields) == 0 {
			// Create. A live row under this name is a collision; a
			// tombstone is overwritten in place.
			if exists && !deleted {
				return nil, fmt.Errorf("%w: %s/%s", ErrRecordNameExists, record.Type, record.Name)
			}
		} else {
			presented, sysErr := decodeSystemFields(record.SystemFields)
			if sysErr != nil {
				return nil, fmt.Errorf("%w: %s/%s: %v", ErrVersionMismatch, record.Type, record.Name, sysErr)
			}
			if !exists {
				return nil, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, record.Type, record.Name)
			}
			if deleted || presented.Revision != storedRev {
				return nil, fmt.Errorf("%w: %s/%s", ErrVersionMismatch, record.Type, record.Name)
			}
		}

		fields, marshalErr := json.Marshal(record.Fields)
		if marshalErr != nil {
			return nil, fmt.Errorf("encode record fields (%s): %w", record.Name, marshalErr)
		}

		var (
			newRev     int64
			modifiedAt time.Time
		)
		err = tx.QueryRowContext(ctx, upsertRecord,
			zoneID,
			string(record.Type),
			record.Name,
			record.SchemaVersion,
			string(fields),
			storedRev+1,
			req.DeviceID,
		).Scan(&newRev, &modifiedAt)
		if err != nil {
			log.Err(err).Str("func", "*recordRepository.SaveRecords").Msg("error upserting record")
			return nil, r.wrapDBError("upsert record", err)
		}

		record.SystemFields, err = encodeSystemFields(recordSystemFields{
			Name:       record.Name,
			Revision:   newRev,
			ModifiedAt: modifiedAt,
		})
		if err != nil {
			return nil, err
		}
		record.Deleted = false
		saved = append(saved, record)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save records transaction: %w", err)
	}

	return saved, nil
}

// DeleteRecords tombstones the named records. Names the zone does not know
// are ignored so the operation is idempotent. Stale system fields fail the
// batch with [ErrVersionMismatch].
func (r *recordRepository) DeleteRecords(ctx context.Context, accountID int64, req models.DeleteRecordsRequest) error {
	log := logger.FromContext(ctx)

	zoneID, _, err := r.findZone(ctx, accountID, req.Zone)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete records transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range req.Entries {
		var (
			storedRev int64
			deleted   bool
		)
		err = tx.QueryRowContext(ctx, findRecordForUpdate, zoneID, string(entry.Type), entry.Name).
			Scan(&storedRev, &deleted)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			log.Err(err).Str("func", "*recordRepository.DeleteRecords").Msg("error locking record row")
			return r.wrapDBError("lock record", err)
		}
		if deleted {
			continue
		}

		if len(entry.SystemFields) > 0 {
			presented, sysErr := decodeSystemFields(entry.SystemFields)
			if sysErr != nil {
				return fmt.Errorf("%w: %s/%s: %v", ErrVersionMismatch, entry.Type, entry.Name, sysErr)
			}
			if presented.Revision != storedRev {
				return fmt.Errorf("%w: %s/%s", ErrVersionMismatch, entry.Type, entry.Name)
			}
		}

		if _, err = tx.ExecContext(ctx, tombstoneRecord, zoneID, string(entry.Type), entry.Name, req.DeviceID); err != nil {
			log.Err(err).Str("func", "*recordRepository.DeleteRecords").Msg("error tombstoning record")
			return r.wrapDBError("tombstone record", err)
		}
	}

	return tx.Commit()
}

// FetchRecords returns the live revision of the named records; names that
// do not exist (or are tombstoned) come back in Missing.
func (r *recordRepository) FetchRecords(ctx context.Context, accountID int64, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error) {
	log := logger.FromContext(ctx)

	zoneID, _, err := r.findZone(ctx, accountID, req.Zone)
	if err != nil {
		return models.FetchRecordsResponse{}, err
	}

	query, args, err := buildFetchRecordsQuery(zoneID, req.Type, req.Names)
	if err != nil {
		return models.FetchRecordsResponse{}, fmt.Errorf("build fetch records query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.FetchRecords").Msg("error querying records")
		return models.FetchRecordsResponse{}, r.wrapDBError("fetch records", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(req.Names))
	var resp models.FetchRecordsResponse
	for rows.Next() {
		var (
			record     models.RemoteRecord
			fields     string
			revision   int64
			modifiedAt time.Time
		)
		if err = rows.Scan(&record.Name, &record.SchemaVersion, &fields, &revision, &modifiedAt); err != nil {
			log.Err(err).Str("func", "*recordRepository.FetchRecords").Msg("error scanning record row")
			return models.FetchRecordsResponse{}, fmt.Errorf("failed to scan record row: %w", err)
		}

		record.Type = req.Type
		if err = json.Unmarshal([]byte(fields), &record.Fields); err != nil {
			return models.FetchRecordsResponse{}, fmt.Errorf("decode record fields (%s): %w", record.Name, err)
		}
		if record.SystemFields, err = encodeSystemFields(recordSystemFields{
			Name:       record.Name,
			Revision:   revision,
			ModifiedAt: modifiedAt,
		}); err != nil {
			return models.FetchRecordsResponse{}, err
		}

		found[record.Name] = true
		resp.Records = append(resp.Records, record)
	}
	if err = rows.Err(); err != nil {
		return models.FetchRecordsResponse{}, fmt.Errorf("error iterating record rows: %w", err)
	}

	for _, name := range req.Names {
		if !found[name] {
			resp.Missing = append(resp.Missing, name)
		}
	}

	return resp, nil
}

// FetchChanges reads one page of the zone change feed. The cursor is a
// feed sequence number; a cursor below the zone's tombstone retention
// floor yields [ErrChangeTokenExpired], forcing the client to restart from
// a zero token.
func (r *recordRepository) FetchChanges(ctx context.Context, accountID int64, req models.FetchChangesRequest) (models.RecordChanges, error) {
	log := logger.FromContext(ctx)

	zoneID, gcFloor, err := r.findZone(ctx, accountID, req.Zone)
	if err != nil {
		return models.RecordChanges{}, err
	}

	cursor, err := parseChangeCursor(req.Token)
	if err != nil {
		return models.RecordChanges{}, err
	}
	if cursor > 0 && cursor < gcFloor {
		return models.RecordChanges{}, fmt.Errorf("%w: cursor %d below retention floor %d", ErrChangeTokenExpired, cursor, gcFloor)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultChangePageSize
	}

	// Fetch one extra row to learn whether another page exists.
	query, args, err := buildFetchChangesQuery(zoneID, req.Type, cursor, req.DeviceID, limit+1)
	if err != nil {
		return models.RecordChanges{}, fmt.Errorf("build fetch changes query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.FetchChanges").Msg("error querying change feed")
		return models.RecordChanges{}, r.wrapDBError("fetch changes", err)
	}
	defer rows.Close()

	var (
		changes models.RecordChanges
		lastSeq int64
		count   int
	)
	for rows.Next() {
		var (
			record     models.RemoteRecord
			fields     string
			revision   int64
			deleted    bool
			seq        int64
			modifiedAt time.Time
		)
		if err = rows.Scan(&record.Name, &record.SchemaVersion, &fields, &revision, &deleted, &seq, &modifiedAt); err != nil {
			log.Err(err).Str("func", "*recordRepository.FetchChanges").Msg("error scanning change row")
			return models.RecordChanges{}, fmt.Errorf("failed to scan change row: %w", err)
		}

		count++
		if count > limit {
			changes.More = true
			break
		}
		lastSeq = seq

		if deleted {
			changes.DeletedNames = append(changes.DeletedNames, record.Name)
			continue
		}

		record.Type = req.Type
		if err = json.Unmarshal([]byte(fields), &record.Fields); err != nil {
			return models.RecordChanges{}, fmt.Errorf("decode record fields (%s): %w", record.Name, err)
		}
		if record.SystemFields, err = encodeSystemFields(recordSystemFields{
			Name:       record.Name,
			Revision:   revision,
			ModifiedAt: modifiedAt,
		}); err != nil {
			return models.RecordChanges{}, err
		}
		changes.Changed = append(changes.Changed, record)
	}
	if err = rows.Err(); err != nil {
		return models.RecordChanges{}, fmt.Errorf("error iterating change rows: %w", err)
	}

	if changes.More {
		changes.NewToken = encodeChangeCursor(lastSeq)
		return changes, nil
	}

	// Final page: advance the token past everything in the feed, including
	// this device's own writes, which the query skipped.
	var maxSeq int64
	if err = r.db.QueryRowContext(ctx, maxSeqForType, zoneID, string(req.Type)).Scan(&maxSeq); err != nil {
		log.Err(err).Str("func", "*recordRepository.FetchChanges").Msg("error reading feed high-water mark")
		return models.RecordChanges{}, r.wrapDBError("fetch feed high-water mark", err)
	}
	if maxSeq < cursor {
		maxSeq = cursor
	}
	changes.NewToken = encodeChangeCursor(maxSeq)

	return changes, nil
}

func (r *recordRepository) findZone(ctx context.Context, accountID int64, zone string) (zoneID, gcFloor int64, err error) {
	log := logger.FromContext(ctx)

	err = r.db.QueryRowContext(ctx, findZone, accountID, zone).Scan(&zoneID, &gcFloor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: %s", ErrZoneNotFound, zone)
	}
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.findZone").Msg("error resolving zone")
		return 0, 0, r.wrapDBError("resolve zone", err)
	}

	return zoneID, gcFloor, nil
}

// wrapDBError tags retryable driver failures so the transport layer can
// answer 503 instead of 500.
func (r *recordRepository) wrapDBError(op string, err error) error {
	if r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%s: %w (retryable)", op, err)
	}
	return fmt.Errorf("%s: unexpected DB error: %w", op, err)
}

func decodeSystemFields(blob []byte) (recordSystemFields, error) {
	var sf recordSystemFields
	if err := json.Unmarshal(blob, &sf); err != nil {
		return recordSystemFields{}, fmt.Errorf("decode system fields: %w", err)
	}
	return sf, nil
}

func encodeSystemFields(sf recordSystemFields) ([]byte, error) {
	blob, err := json.Marshal(sf)
	if err != nil {
		return nil, fmt.Errorf("encode system fields: %w", err)
	}
	return blob, nil
}

// parseChangeCursor decodes a change token back to a feed sequence number.
// The zero token means "from the beginning". Garbage tokens are treated as
// expired rather than erroring forever.
func parseChangeCursor(token models.ChangeToken) (int64, error) {
	if token.Zero() {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(string(token), 10, 64)
	if err != nil || cursor < 0 {
		return 0, fmt.Errorf("%w: malformed cursor %q", ErrChangeTokenExpired, token)
	}
	return cursor, nil
}

func encodeChangeCursor(seq int64) models.ChangeToken {
	return models.ChangeToken(strconv.FormatInt(seq, 10))
}
