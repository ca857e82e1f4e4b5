// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package remote provides transport-layer abstractions for talking to the
// shelfsync record service.
//
// The primary abstraction is [RecordService], which decouples the sync
// engine from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPRecordService]).
//
// Error values defined in errors.go are mapped from HTTP responses by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for a save rejected by the record
// version check, [ErrTokenExpired] for a stale change token).
package remote

import (
	"context"

	"github.com/shelfsync/shelfsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/record_service_mock.go -package=mock

// RecordService defines transport-agnostic communication with the record
// service. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
type RecordService interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored, or an empty string
	// if none has been set yet.
	Token() string

	// Register creates an account and stores the returned bearer token via
	// SetToken.
	Register(ctx context.Context, creds models.Credentials) error

	// Login authenticates and stores the returned bearer token via SetToken.
	Login(ctx context.Context, creds models.Credentials) error

	// VerifyAccount reports the identity of the account behind the current
	// token. Returns [ErrUnauthorized] when the token is missing or stale
	// and [ErrUnavailable] when the service cannot be reached.
	VerifyAccount(ctx context.Context) (models.AccountIdentity, error)

	// EnsureZone creates the record zone if it does not exist yet.
	// Idempotent.
	EnsureZone(ctx context.Context, req models.EnsureZoneRequest) error

	// EnsureSubscription registers this device for change notifications on
	// the zone. Idempotent.
	EnsureSubscription(ctx context.Context, req models.EnsureZoneRequest) error

	// SaveRecords uploads a batch of records. Each record must carry the
	// system fields from its last known server revision; a mismatch yields
	// [ErrConflict] and a create whose name already exists yields
	// [ErrIDCollision]. On success the returned records carry fresh system
	// fields.
	SaveRecords(ctx context.Context, req models.SaveRecordsRequest) ([]models.RemoteRecord, error)

	// DeleteRecords deletes a batch of records by name. Deleting an unknown
	// name is not an error.
	DeleteRecords(ctx context.Context, req models.DeleteRecordsRequest) error

	// FetchRecords fetches the current server revision of the named
	// records. Names the server does not know come back in Missing.
	FetchRecords(ctx context.Context, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error)

	// FetchChanges returns records changed since req.Token, one page at a
	// time. A stale token yields [ErrTokenExpired]; a missing zone yields
	// [ErrZoneNotFound].
	FetchChanges(ctx context.Context, req models.FetchChangesRequest) (models.RecordChanges, error)
}
