// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/models"
)

func newTestBookRepo(t *testing.T) (*localBookRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &localBookRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

// ── Save ────────────────────────────────────────────────────────────────

func TestBookSave_InsertLogsInsertTransaction(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	book := models.Book{ID: "b1", Title: "The Trial"}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(book.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO books").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sync_transactions").
		WithArgs(string(models.EntityBooks), book.ID, string(models.TxInsert), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	saved, err := repo.Save(context.Background(), book, []string{"title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.CreatedAt.IsZero() || saved.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped on save")
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookSave_ExistingLogsUpdateTransaction(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	book := models.Book{ID: "b1", Title: "The Trial"}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(book.ID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO books").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sync_transactions").
		WithArgs(string(models.EntityBooks), book.ID, string(models.TxUpdate), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if _, err := repo.Save(context.Background(), book, []string{"title"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookSave_UpsertErrorRollsBack(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO books").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	_, err := repo.Save(context.Background(), models.Book{ID: "b1"}, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ── Delete ──────────────────────────────────────────────────────────────

func TestBookDelete_LogsDeleteTransaction(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(sqlmock.AnyArg(), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sync_transactions").
		WithArgs(string(models.EntityBooks), "b1", string(models.TxDelete), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Delete(context.Background(), "b1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookDelete_MissingBook(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE books").
		WithArgs(sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.Delete(context.Background(), "ghost"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

// ── Downstream writes bypass the change log ─────────────────────────────

func TestBookApplyRemote_DoesNotLogTransaction(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO books").
		WillReturnResult(sqlmock.NewResult(0, 1))

	book := models.Book{ID: "b1", Title: "The Castle", RemoteName: "rec-b1"}
	if err := repo.ApplyRemote(context.Background(), book); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// No sync_transactions insert expected; any extra statement fails here.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestBookSetSystemFields_EmptyBlobStoresNULL(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectExec("UPDATE books").
		WithArgs(sql.NullString{String: "rec-b1", Valid: true}, nil, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetSystemFields(context.Background(), "b1", "rec-b1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ── Counts ──────────────────────────────────────────────────────────────

func TestBookCounts(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count"}).AddRow(5, 3))

	total, uploaded, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 5 || uploaded != 3 {
		t.Errorf("expected 5 total / 3 uploaded, got %d/%d", total, uploaded)
	}
}

// ── Get ─────────────────────────────────────────────────────────────────

func TestBookGet_NotFound(t *testing.T) {
	repo, mock, db := newTestBookRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.Get(context.Background(), "ghost"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
