// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package service holds the business layer of both binaries: the
// change-tracked book/shelf services the engine daemon exposes to its UI,
// and the account and record services the record service's HTTP handlers
// delegate to.
package service

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

// AccountService handles registration, authentication and token issuance
// for the record service.
type AccountService interface {
	// Register creates an account from credentials and returns it with a
	// session token. The secret is stored as an argon2id hash.
	Register(ctx context.Context, creds models.Credentials) (models.Account, models.AuthToken, error)

	// Login verifies credentials and issues a session token. A wrong
	// secret yields [ErrWrongSecret].
	Login(ctx context.Context, creds models.Credentials) (models.Account, models.AuthToken, error)

	// GetAccount returns the account behind an authenticated request.
	GetAccount(ctx context.Context, accountID int64) (models.Account, error)
}

// RecordAPIService is the validated business layer over the server record
// store. Handlers parse and authenticate; this layer checks batch shape and
// delegates to the repository.
type RecordAPIService interface {
	EnsureZone(ctx context.Context, accountID int64, req models.EnsureZoneRequest) error
	EnsureSubscription(ctx context.Context, accountID int64, req models.EnsureZoneRequest) error
	SaveRecords(ctx context.Context, accountID int64, req models.SaveRecordsRequest) ([]models.RemoteRecord, error)
	DeleteRecords(ctx context.Context, accountID int64, req models.DeleteRecordsRequest) error
	FetchRecords(ctx context.Context, accountID int64, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error)
	FetchChanges(ctx context.Context, accountID int64, req models.FetchChangesRequest) (models.RecordChanges, error)
}
