// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// BookRepository is the local book store. Save and Delete record a
// transaction in the same database transaction as the mutation, so the sync
// engine can observe every local change in order. ApplyRemote and
// RemoveLocal bypass change tracking: they are reserved for the downstream
// processor, whose writes must never be re-uploaded.
type BookRepository interface {
	Save(ctx context.Context, book models.Book, changedFields []string) (models.Book, error)
	Get(ctx context.Context, id string) (models.Book, error)
	GetAll(ctx context.Context) ([]models.Book, error)
	GetByRemoteName(ctx context.Context, remoteName string) (models.Book, error)
	Delete(ctx context.Context, id string) error

	// ApplyRemote upserts a book as delivered by the record service without
	// recording a transaction.
	ApplyRemote(ctx context.Context, book models.Book) error

	// SetSystemFields stores the remote bookkeeping pair after a confirmed
	// upload, without recording a transaction.
	SetSystemFields(ctx context.Context, id, remoteName string, systemFields []byte) error

	// RemoveLocal hard-deletes a book after its remote tombstone was
	// applied or its deletion upload confirmed.
	RemoveLocal(ctx context.Context, id string) error

	// Counts reports the number of live books and how many of them carry
	// system fields (confirmed uploaded).
	Counts(ctx context.Context) (total, uploaded int, err error)
}

// ShelfRepository mirrors BookRepository for shelves.
type ShelfRepository interface {
	Save(ctx context.Context, shelf models.Shelf, changedFields []string) (models.Shelf, error)
	Get(ctx context.Context, id string) (models.Shelf, error)
	GetAll(ctx context.Context) ([]models.Shelf, error)
	GetByRemoteName(ctx context.Context, remoteName string) (models.Shelf, error)
	Delete(ctx context.Context, id string) error
	ApplyRemote(ctx context.Context, shelf models.Shelf) error
	SetSystemFields(ctx context.Context, id, remoteName string, systemFields []byte) error
	RemoveLocal(ctx context.Context, id string) error
	Counts(ctx context.Context) (total, uploaded int, err error)
}

// TransactionLogRepository reads the ordered local change log. Entries are
// written by the book and shelf repositories; the sync engine only reads
// them and checkpoints past them.
type TransactionLogRepository interface {
	// ListAfter returns up to limit transactions with ID greater than
	// afterID, in ascending ID order.
	ListAfter(ctx context.Context, afterID int64, limit int) ([]models.LocalTransaction, error)

	// Get returns the transaction with the given ID.
	Get(ctx context.Context, id int64) (models.LocalTransaction, error)

	// Count reports the number of transactions with ID greater than afterID.
	Count(ctx context.Context, afterID int64) (int, error)

	// Clear removes the whole log. Only the change-tracking resetter calls
	// this.
	Clear(ctx context.Context) error
}

// SyncStateRepository persists the engine's durable cursors and flags:
// per-type change tokens, the confirmed transaction checkpoint, the disable
// reason, the verified account identity and the device registration.
type SyncStateRepository interface {
	GetChangeToken(ctx context.Context, entityType models.EntityType) (models.ChangeToken, error)
	SetChangeToken(ctx context.Context, entityType models.EntityType, token models.ChangeToken) error
	DropChangeTokens(ctx context.Context) error

	GetConfirmedTransactionID(ctx context.Context) (int64, error)
	SetConfirmedTransactionID(ctx context.Context, id int64) error

	GetDisabledReason(ctx context.Context) (models.DisabledReason, error)
	SetDisabledReason(ctx context.Context, reason models.DisabledReason) error

	GetAccountIdentity(ctx context.Context) (models.AccountIdentity, error)
	SetAccountIdentity(ctx context.Context, identity models.AccountIdentity) error

	// DeviceID returns the stable identifier of this installation,
	// generating and persisting one on first call.
	DeviceID(ctx context.Context) (string, error)
}
