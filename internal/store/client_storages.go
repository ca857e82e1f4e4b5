// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"
	"fmt"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
)

// ClientStorages groups the client-side repositories into a single value
// the engine can be wired with. It also owns the two cross-repository
// maintenance operations, which must touch every table atomically.
type ClientStorages struct {
	Books        BookRepository
	Shelves      ShelfRepository
	Transactions TransactionLogRepository
	SyncState    SyncStateRepository

	db *DB
}

// NewClientStorages initialises the client storage layer:
//  1. Opens an SQLite connection to the file path in cfg.DB.DSN, creating
//     the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Constructs the repositories over the shared connection.
//
// Returns an error if the database connection cannot be established or if
// migration fails.
func NewClientStorages(cfg config.Storage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate("sqlite3"); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &ClientStorages{
		Books:        NewLocalBookRepository(db, logger),
		Shelves:      NewLocalShelfRepository(db, logger),
		Transactions: NewLocalTransactionLogRepository(db, logger),
		SyncState:    NewLocalSyncStateRepository(db, logger),
		db:           db,
	}, nil
}

// ResetChangeTracking drops every sync cursor in one database transaction:
// the change log, the confirmed checkpoint and the per-type change tokens.
// Entity rows and their system fields are untouched, so the next engine
// start re-uploads from live state and refetches from a zero token without
// losing anything.
func (s *ClientStorages) ResetChangeTracking(ctx context.Context) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []struct {
		query string
		args  []any
	}{
		{query: clearTransactions},
		{query: deleteSyncStateKeysLike, args: []any{stateKeyTokenPrefix + "%"}},
		{query: upsertSyncStateValue, args: []any{stateKeyConfirmedTxID, "0"}},
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			log.Err(err).
				Str("func", "ClientStorages.ResetChangeTracking").
				Msg("failed to reset change tracking")
			return fmt.Errorf("failed to reset change tracking: %w", err)
		}
	}

	return tx.Commit()
}

// Close releases the underlying database connection.
func (s *ClientStorages) Close() error {
	return s.db.Close()
}

// EraseSyncMetadata performs the full teardown used when the account
// changes: everything ResetChangeTracking drops, plus the remote-name and
// system-fields bookkeeping on every entity and the stored account
// identity. Local entity data survives; it simply no longer claims to be
// uploaded anywhere.
func (s *ClientStorages) EraseSyncMetadata(ctx context.Context) error {
	log := logger.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin erase transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []struct {
		query string
		args  []any
	}{
		{query: clearBookSyncMetadata},
		{query: clearShelfSyncMetadata},
		{query: clearTransactions},
		{query: deleteSyncStateKeysLike, args: []any{stateKeyTokenPrefix + "%"}},
		{query: upsertSyncStateValue, args: []any{stateKeyConfirmedTxID, "0"}},
		{query: upsertSyncStateValue, args: []any{stateKeyAccount, ""}},
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			log.Err(err).
				Str("func", "ClientStorages.EraseSyncMetadata").
				Msg("failed to erase sync metadata")
			return fmt.Errorf("failed to erase sync metadata: %w", err)
		}
	}

	return tx.Commit()
}
