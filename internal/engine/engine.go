// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package engine is the bidirectional synchronization core: the coordinator
// that owns lifecycle and connectivity handling, the downstream processor
// pulling remote changes into the local store, the upstream processor
// pushing local transactions out, and the remote environment initializer
// that must succeed before either direction runs.
//
// All remote calls funnel through a single [queue.Queue], which serializes
// them and is suspended while the network is unreachable. Processor state
// (change tokens, the confirmed transaction checkpoint, per-entity remote
// metadata) is mutated only from queue operations, so one goroutine at a
// time touches it.
package engine

import (
	"context"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/queue"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/internal/store"
)

// Deps bundles the collaborators shared by the engine components. All
// fields are required unless noted.
type Deps struct {
	Logger    *logger.Logger
	Service   remote.RecordService
	Books     store.BookRepository
	Shelves   store.ShelfRepository
	Txlog     store.TransactionLogRepository
	SyncState store.SyncStateRepository
	Mapper    *recordmap.Mapper
	Queue     *queue.Queue

	// Zone is the remote record zone everything is stored under.
	Zone string

	// FetchLimit caps the page size of differential fetches and the batch
	// size of upstream pushes. Zero means the server default.
	FetchLimit int
}

// MetadataStore is the cross-repository maintenance surface of the local
// store: the change-tracking resetter and the full metadata erase used on
// account change. [store.ClientStorages] satisfies it.
type MetadataStore interface {
	// ResetChangeTracking drops the change log, the confirmed checkpoint
	// and all change tokens, atomically. Entity rows keep their remote
	// bookkeeping.
	ResetChangeTracking(ctx context.Context) error

	// EraseSyncMetadata additionally clears every entity's remote name and
	// system fields plus the stored account identity, so the next session
	// re-uploads and refetches everything.
	EraseSyncMetadata(ctx context.Context) error
}

// ReachabilityMonitor delivers discrete connectivity transitions. The
// callback receives true when the service became reachable and false when
// it stopped being reachable. Cancel detaches the subscription.
type ReachabilityMonitor interface {
	Subscribe(fn func(available bool)) (cancel func())
}
