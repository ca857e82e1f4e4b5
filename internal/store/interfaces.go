// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_store_mock.go -package=mock

// AccountRepository is the server-side account store.
type AccountRepository interface {
	// CreateAccount persists a new account and returns it with the
	// server-assigned fields (ID, RecordName, CreatedAt). Returns
	// [ErrLoginAlreadyExists] when the login is taken.
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)

	// FindAccountByLogin returns the account for the given login, or
	// [ErrNoAccountFound].
	FindAccountByLogin(ctx context.Context, login string) (models.Account, error)

	// GetAccount returns the account by ID.
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)
}

// RecordRepository is the server-side record store: zones, subscriptions,
// records and the per-zone change feed the differential fetch reads.
type RecordRepository interface {
	// EnsureZone creates the zone for the account if missing. Idempotent.
	EnsureZone(ctx context.Context, accountID int64, zone string) error

	// EnsureSubscription registers a device for change notifications on the
	// zone. Idempotent.
	EnsureSubscription(ctx context.Context, accountID int64, zone, deviceID string) error

	// SaveRecords applies a batch of creates and optimistic updates. A
	// create whose name exists yields [ErrRecordNameExists]; an update
	// whose system fields are stale yields [ErrVersionMismatch]. On success
	// every record comes back with fresh system fields.
	SaveRecords(ctx context.Context, accountID int64, req models.SaveRecordsRequest) ([]models.RemoteRecord, error)

	// DeleteRecords tombstones records by name. Unknown names are ignored;
	// stale system fields yield [ErrVersionMismatch].
	DeleteRecords(ctx context.Context, accountID int64, req models.DeleteRecordsRequest) error

	// FetchRecords returns the live revision of the named records plus the
	// names that do not exist.
	FetchRecords(ctx context.Context, accountID int64, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error)

	// FetchChanges reads one page of the zone change feed past the cursor
	// encoded in req.Token. An expired cursor yields [ErrChangeTokenExpired].
	FetchChanges(ctx context.Context, accountID int64, req models.FetchChangesRequest) (models.RecordChanges, error)
}
