// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/models"
)

func newTestRecordRepo(t *testing.T) (*recordRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &recordRepository{
		db:     &DB{DB: db, logger: l, errorClassificator: NewPostgresErrorClassifier()},
		logger: l,
	}
	return repo, mock, db
}

func expectZone(mock sqlmock.Sqlmock, zoneID, gcFloor int64) {
	mock.ExpectQuery("SELECT zone_id, gc_floor FROM zones").
		WillReturnRows(sqlmock.NewRows([]string{"zone_id", "gc_floor"}).AddRow(zoneID, gcFloor))
}

func mustSystemFields(t *testing.T, name string, revision int64) []byte {
	t.Helper()
	blob, err := json.Marshal(recordSystemFields{
		Name:       name,
		Revision:   revision,
		ModifiedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to marshal system fields: %v", err)
	}
	return blob
}

// ── SaveRecords ─────────────────────────────────────────────────────────

func TestSaveRecords_CreateReturnsFreshSystemFields(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WithArgs(int64(10), "books", "rec-b1").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}))
	mock.ExpectQuery("INSERT INTO records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "modified_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	req := models.SaveRecordsRequest{
		Zone:     "library",
		DeviceID: "dev-1",
		Records: []models.RemoteRecord{{
			Type:          models.EntityBooks,
			Name:          "rec-b1",
			SchemaVersion: 2,
			Fields:        map[string]any{"book.title": "The Trial"},
		}},
	}

	saved, err := repo.SaveRecords(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(saved))
	}

	sf, err := decodeSystemFields(saved[0].SystemFields)
	if err != nil {
		t.Fatalf("invalid system fields on saved record: %v", err)
	}
	if sf.Revision != 1 {
		t.Errorf("expected revision 1 on create, got %d", sf.Revision)
	}
	if sf.Name != "rec-b1" {
		t.Errorf("unexpected name in system fields: %s", sf.Name)
	}
}

func TestSaveRecords_CreateOverLiveRecordIsCollision(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}).AddRow(3, false))
	mock.ExpectRollback()

	req := models.SaveRecordsRequest{
		Zone: "library",
		Records: []models.RemoteRecord{{
			Type: models.EntityBooks,
			Name: "rec-b1",
		}},
	}

	_, err := repo.SaveRecords(context.Background(), 1, req)
	if !errors.Is(err, ErrRecordNameExists) {
		t.Fatalf("expected ErrRecordNameExists, got %v", err)
	}
}

func TestSaveRecords_CreateOverTombstoneSucceeds(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}).AddRow(3, true))
	mock.ExpectQuery("INSERT INTO records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "modified_at"}).AddRow(4, time.Now()))
	mock.ExpectCommit()

	req := models.SaveRecordsRequest{
		Zone: "library",
		Records: []models.RemoteRecord{{
			Type: models.EntityBooks,
			Name: "rec-b1",
		}},
	}

	saved, err := repo.SaveRecords(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sf, _ := decodeSystemFields(saved[0].SystemFields)
	if sf.Revision != 4 {
		t.Errorf("expected revision 4 after resurrecting tombstone, got %d", sf.Revision)
	}
}

func TestSaveRecords_StaleRevisionIsVersionMismatch(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}).AddRow(5, false))
	mock.ExpectRollback()

	req := models.SaveRecordsRequest{
		Zone: "library",
		Records: []models.RemoteRecord{{
			Type:         models.EntityBooks,
			Name:         "rec-b1",
			SystemFields: mustSystemFields(t, "rec-b1", 3), // server is at 5
		}},
	}

	_, err := repo.SaveRecords(context.Background(), 1, req)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestSaveRecords_UpdateOfMissingRecord(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}))
	mock.ExpectRollback()

	req := models.SaveRecordsRequest{
		Zone: "library",
		Records: []models.RemoteRecord{{
			Type:         models.EntityBooks,
			Name:         "rec-gone",
			SystemFields: mustSystemFields(t, "rec-gone", 1),
		}},
	}

	_, err := repo.SaveRecords(context.Background(), 1, req)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSaveRecords_UnknownZone(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT zone_id, gc_floor FROM zones").
		WillReturnRows(sqlmock.NewRows([]string{"zone_id", "gc_floor"}))

	_, err := repo.SaveRecords(context.Background(), 1, models.SaveRecordsRequest{Zone: "nope"})
	if !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("expected ErrZoneNotFound, got %v", err)
	}
}

// ── DeleteRecords ───────────────────────────────────────────────────────

func TestDeleteRecords_MissingNameIgnored(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}))
	mock.ExpectCommit()

	req := models.DeleteRecordsRequest{
		Zone:    "library",
		Entries: []models.DeleteEntry{{Type: models.EntityBooks, Name: "rec-gone"}},
	}

	if err := repo.DeleteRecords(context.Background(), 1, req); err != nil {
		t.Fatalf("expected missing name to be ignored, got %v", err)
	}
}

func TestDeleteRecords_TombstonesLiveRecord(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT revision, deleted FROM records").
		WillReturnRows(sqlmock.NewRows([]string{"revision", "deleted"}).AddRow(2, false))
	mock.ExpectExec("UPDATE records").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req := models.DeleteRecordsRequest{
		Zone:     "library",
		DeviceID: "dev-1",
		Entries: []models.DeleteEntry{{
			Type:         models.EntityBooks,
			Name:         "rec-b1",
			SystemFields: mustSystemFields(t, "rec-b1", 2),
		}},
	}

	if err := repo.DeleteRecords(context.Background(), 1, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ── FetchChanges ────────────────────────────────────────────────────────

func TestFetchChanges_CursorBelowFloorIsExpired(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 100)

	req := models.FetchChangesRequest{
		Zone:  "library",
		Type:  models.EntityBooks,
		Token: models.ChangeToken("42"), // below gc_floor=100
	}

	_, err := repo.FetchChanges(context.Background(), 1, req)
	if !errors.Is(err, ErrChangeTokenExpired) {
		t.Fatalf("expected ErrChangeTokenExpired, got %v", err)
	}
}

func TestFetchChanges_MalformedCursorIsExpired(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)

	req := models.FetchChangesRequest{
		Zone:  "library",
		Type:  models.EntityBooks,
		Token: models.ChangeToken("not-a-number"),
	}

	_, err := repo.FetchChanges(context.Background(), 1, req)
	if !errors.Is(err, ErrChangeTokenExpired) {
		t.Fatalf("expected ErrChangeTokenExpired, got %v", err)
	}
}

func TestFetchChanges_FullPageSetsMore(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)

	rows := sqlmock.NewRows([]string{"name", "schema_version", "fields", "revision", "deleted", "seq", "modified_at"}).
		AddRow("rec-b1", 2, `{"book.title":"One"}`, 1, false, 101, time.Now()).
		AddRow("rec-b2", 2, `{}`, 3, true, 102, time.Now()).
		AddRow("rec-b3", 2, `{"book.title":"Three"}`, 1, false, 103, time.Now())

	mock.ExpectQuery("SELECT name, schema_version, fields, revision, deleted, seq, modified_at").
		WillReturnRows(rows)

	req := models.FetchChangesRequest{
		Zone:  "library",
		Type:  models.EntityBooks,
		Limit: 2,
	}

	changes, err := repo.FetchChanges(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changes.More {
		t.Error("expected More=true when an extra row exists")
	}
	if len(changes.Changed) != 1 {
		t.Errorf("expected 1 changed record, got %d", len(changes.Changed))
	}
	if len(changes.DeletedNames) != 1 || changes.DeletedNames[0] != "rec-b2" {
		t.Errorf("expected rec-b2 tombstone, got %v", changes.DeletedNames)
	}
	if changes.NewToken != models.ChangeToken("102") {
		t.Errorf("expected token 102 (last consumed row), got %s", changes.NewToken)
	}
}

func TestFetchChanges_FinalPageAdvancesToHighWaterMark(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)

	rows := sqlmock.NewRows([]string{"name", "schema_version", "fields", "revision", "deleted", "seq", "modified_at"}).
		AddRow("rec-b1", 2, `{"book.title":"One"}`, 1, false, 101, time.Now())

	mock.ExpectQuery("SELECT name, schema_version, fields, revision, deleted, seq, modified_at").
		WillReturnRows(rows)
	// Feed high-water mark includes this device's own excluded writes.
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(105))

	req := models.FetchChangesRequest{
		Zone:     "library",
		Type:     models.EntityBooks,
		DeviceID: "dev-1",
		Limit:    10,
	}

	changes, err := repo.FetchChanges(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changes.More {
		t.Error("expected More=false on final page")
	}
	if changes.NewToken != models.ChangeToken("105") {
		t.Errorf("expected token 105 (high-water mark), got %s", changes.NewToken)
	}
}

// ── FetchRecords ────────────────────────────────────────────────────────

func TestFetchRecords_ReportsMissingNames(t *testing.T) {
	repo, mock, db := newTestRecordRepo(t)
	defer db.Close()

	expectZone(mock, 10, 0)

	rows := sqlmock.NewRows([]string{"name", "schema_version", "fields", "revision", "modified_at"}).
		AddRow("rec-b1", 2, `{"book.title":"One"}`, 4, time.Now())

	mock.ExpectQuery("SELECT name, schema_version, fields, revision, modified_at").
		WillReturnRows(rows)

	req := models.FetchRecordsRequest{
		Zone:  "library",
		Type:  models.EntityBooks,
		Names: []string{"rec-b1", "rec-gone"},
	}

	resp, err := repo.FetchRecords(context.Background(), 1, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resp.Records))
	}
	if len(resp.Missing) != 1 || resp.Missing[0] != "rec-gone" {
		t.Errorf("expected rec-gone in Missing, got %v", resp.Missing)
	}

	sf, err := decodeSystemFields(resp.Records[0].SystemFields)
	if err != nil {
		t.Fatalf("invalid system fields: %v", err)
	}
	if sf.Revision != 4 {
		t.Errorf("expected revision 4, got %d", sf.Revision)
	}
}
