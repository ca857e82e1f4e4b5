// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/queue"
	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/models"
)

// State is the coordinator lifecycle state.
type State int

const (
	// StateStopped means no sync activity: either never started, stopped
	// explicitly, or disabled after an error.
	StateStopped State = iota

	// StateStarting means the remote environment is being prepared.
	StateStarting

	// StateRunning means both processors are active.
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	default:
		return "stopped"
	}
}

// Coordinator owns the sync engine lifecycle: it builds the serialized
// operation queue, wires the downstream and upstream processors and the
// remote environment initializer onto it, and drives them through
// start/stop, reachability changes, account switches and fatal errors.
//
// All state transitions funnel through the coordinator; the processors
// never stop or disable sync on their own.
type Coordinator struct {
	logger  *logger.Logger
	deps    Deps
	meta    MetadataStore
	monitor ReachabilityMonitor

	queue *queue.Queue
	down  *Downstream
	up    *Upstream
	init  *Initializer

	mu          sync.Mutex
	state       State
	unsubscribe func()
}

// NewCoordinator builds the engine. deps.Queue is ignored: the coordinator
// constructs its own queue so that fatal operation errors route back into
// it. monitor may be nil when reachability is not tracked.
func NewCoordinator(deps Deps, meta MetadataStore, monitor ReachabilityMonitor) *Coordinator {
	c := &Coordinator{
		logger:  &logger.Logger{Logger: deps.Logger.With().Str("component", "coordinator").Logger()},
		meta:    meta,
		monitor: monitor,
	}

	c.queue = queue.New(queue.Config{
		Logger:      deps.Logger,
		IsTransient: remote.IsTransient,
		OnFatal:     c.onFatal,
	})
	deps.Queue = c.queue
	c.deps = deps

	c.down = NewDownstream(deps, c.onSchemaTooNew)
	c.up = NewUpstream(deps)
	c.init = NewInitializer(deps, func(ctx context.Context) error {
		// The account behind the token changed: every stored cursor and
		// remote name belongs to the previous account's zone.
		return meta.EraseSyncMetadata(ctx)
	})
	return c
}

// Start brings the engine up: clears any persisted disable reason, prepares
// the remote environment, and once that succeeds starts both processors.
// Idempotent while starting or running.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateStopped {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStarting
	c.mu.Unlock()

	if err := c.deps.SyncState.SetDisabledReason(ctx, models.ReasonNone); err != nil {
		c.mu.Lock()
		c.state = StateStopped
		c.mu.Unlock()
		return fmt.Errorf("clear disabled reason: %w", err)
	}

	c.logger.Info().Str("func", "Start").Msg("starting sync")
	c.queue.Resume()
	c.init.Prepare(c.afterPrepare)

	if c.monitor != nil {
		c.mu.Lock()
		if c.unsubscribe == nil {
			c.unsubscribe = c.monitor.Subscribe(c.onReachability)
		}
		c.mu.Unlock()
	}
	return nil
}

// afterPrepare runs on the queue worker once environment preparation
// finished (or failed permanently).
func (c *Coordinator) afterPrepare(err error) {
	if err != nil {
		c.logger.Error().Err(err).Msg("remote environment preparation failed")
		c.StopSyncDueToError(context.Background(), err)
		return
	}

	c.mu.Lock()
	if c.state != StateStarting {
		// Stopped while preparing; stay down.
		c.mu.Unlock()
		return
	}
	c.state = StateRunning
	c.mu.Unlock()

	c.logger.Info().Msg("sync running")
	c.up.Start()
	c.down.EnqueueFetchRemoteChanges(nil)
}

// Stop halts all sync activity and discards queued work. Local change
// tracking continues; a later Start resumes where the log left off.
// Idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.state == StateStopped {
		c.mu.Unlock()
		return
	}
	c.state = StateStopped
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.up.Stop()
	c.init.Invalidate()
	c.queue.Suspend()
	c.queue.CancelAll()
	c.logger.Info().Str("func", "Stop").Msg("sync stopped")
}

// Close stops the engine and shuts down the queue worker. The coordinator
// is unusable afterwards.
func (c *Coordinator) Close() {
	c.Stop()
	c.queue.Close()
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NotifyLocalChange tells the engine the local store committed a new
// transaction. Called by the book and shelf services after every tracked
// write.
func (c *Coordinator) NotifyLocalChange() {
	c.up.EnqueueUploadOperations()
}

// FetchRemoteChanges queues a differential fetch, as on a push
// notification or a foreground transition. done may be nil.
func (c *Coordinator) FetchRemoteChanges(done func(error)) {
	c.down.EnqueueFetchRemoteChanges(done)
}

// FetchRecords queues a targeted fetch of individual records by remote
// name. done may be nil.
func (c *Coordinator) FetchRecords(entityType models.EntityType, names []string, done func(error)) {
	c.down.FetchRecords(entityType, names, done)
}

// ResetChangeTracking drops every sync cursor (change log, checkpoint,
// change tokens) without touching entity data. The next cycle re-derives
// local state from live rows and refetches from a zero token.
func (c *Coordinator) ResetChangeTracking(ctx context.Context) error {
	c.queue.CancelAll()
	if err := c.meta.ResetChangeTracking(ctx); err != nil {
		return fmt.Errorf("reset change tracking: %w", err)
	}
	c.logger.Info().Str("func", "ResetChangeTracking").Msg("change tracking reset")

	c.mu.Lock()
	running := c.state == StateRunning
	c.mu.Unlock()
	if running {
		c.up.EnqueueUploadOperations()
		c.down.EnqueueFetchRemoteChanges(nil)
	}
	return nil
}

// ForceFullResync erases all sync metadata (cursors plus every stored
// remote name and system-fields blob) and restarts the cycle from
// scratch: every local object is re-uploaded as a create and the remote
// zone is refetched in full. Local entity data is never dropped.
func (c *Coordinator) ForceFullResync(ctx context.Context) error {
	c.mu.Lock()
	stopped := c.state == StateStopped
	if !stopped {
		c.state = StateStarting
	}
	c.mu.Unlock()

	c.queue.CancelAll()
	if err := c.meta.EraseSyncMetadata(ctx); err != nil {
		return fmt.Errorf("erase sync metadata: %w", err)
	}
	c.init.Invalidate()
	c.logger.Warn().Str("func", "ForceFullResync").Msg("sync metadata erased, full resync scheduled")

	if !stopped {
		c.queue.Resume()
		c.init.Prepare(c.afterPrepare)
	}
	return nil
}

// DisableSync persists the reason and stops the engine. Only an explicit
// Start clears the reason.
func (c *Coordinator) DisableSync(ctx context.Context, reason models.DisabledReason) {
	if err := c.deps.SyncState.SetDisabledReason(ctx, reason); err != nil {
		c.logger.Error().Err(err).Msg("failed to persist disable reason")
	}
	c.logger.Warn().Str("reason", string(reason)).Msg("sync disabled")
	c.Stop()
}

// StopSyncDueToError disables sync after an unexpected, non-retryable
// failure. The error is recorded in the log; the persisted reason gates
// automatic restarts until the user intervenes.
func (c *Coordinator) StopSyncDueToError(ctx context.Context, err error) {
	c.logger.Error().Err(err).Msg("stopping sync due to error")
	c.DisableSync(ctx, models.ReasonUnexpectedError)
}

// DisableSyncDueOutOfDateLocalAppVersion disables sync because the remote
// schema is newer than this build understands. Local data is kept; the
// user is expected to update the app.
func (c *Coordinator) DisableSyncDueOutOfDateLocalAppVersion(ctx context.Context) {
	c.DisableSync(ctx, models.ReasonOutOfDateApp)
}

// OnAccountChanged re-verifies the account identity, as after an external
// account-switch notification. When the identity really changed the stored
// metadata has already been erased by the verification hook; the engine
// then restarts into a full resync.
func (c *Coordinator) OnAccountChanged() {
	c.mu.Lock()
	stopped := c.state == StateStopped
	c.mu.Unlock()
	if stopped {
		return
	}

	// The switch notification may arrive while offline-suspended; the
	// verification must still go out.
	c.queue.Resume()
	c.init.VerifyUserRecordID(func(changed bool, err error) {
		if err != nil {
			c.logger.Error().Err(err).Msg("account verification failed")
			c.StopSyncDueToError(context.Background(), err)
			return
		}
		if !changed {
			return
		}
		c.logger.Warn().Msg("account changed, restarting sync from scratch")
		c.init.Invalidate()
		c.mu.Lock()
		if c.state == StateRunning {
			c.state = StateStarting
		}
		c.mu.Unlock()
		c.init.Prepare(c.afterPrepare)
	})
}

// Status assembles the diagnostics snapshot: live and uploaded object
// counts per type, the pending push backlog and the latest confirmed
// transaction.
func (c *Coordinator) Status(ctx context.Context) (models.SyncStatus, error) {
	status := models.SyncStatus{
		ObjectCount:         make(map[models.EntityType]int, len(models.SyncedEntityTypes)),
		UploadedObjectCount: make(map[models.EntityType]int, len(models.SyncedEntityTypes)),
	}

	total, uploaded, err := c.deps.Books.Counts(ctx)
	if err != nil {
		return status, fmt.Errorf("count books: %w", err)
	}
	status.ObjectCount[models.EntityBooks] = total
	status.UploadedObjectCount[models.EntityBooks] = uploaded

	total, uploaded, err = c.deps.Shelves.Counts(ctx)
	if err != nil {
		return status, fmt.Errorf("count shelves: %w", err)
	}
	status.ObjectCount[models.EntityShelves] = total
	status.UploadedObjectCount[models.EntityShelves] = uploaded

	status.PendingPushCount, err = c.up.PendingPushCount(ctx)
	if err != nil {
		return status, fmt.Errorf("count pending pushes: %w", err)
	}

	status.LastProcessedTransaction, err = c.up.LatestConfirmedTransaction(ctx)
	if err != nil {
		return status, fmt.Errorf("read confirmed transaction: %w", err)
	}

	status.DisabledReason, err = c.deps.SyncState.GetDisabledReason(ctx)
	if err != nil {
		return status, fmt.Errorf("read disabled reason: %w", err)
	}

	c.mu.Lock()
	status.Running = c.state == StateRunning
	c.mu.Unlock()
	return status, nil
}

// onReachability reacts to connectivity transitions: suspend the queue
// while offline, resume and catch up in both directions when connectivity
// returns.
func (c *Coordinator) onReachability(available bool) {
	c.mu.Lock()
	stopped := c.state == StateStopped
	c.mu.Unlock()
	if stopped {
		return
	}

	if !available {
		c.logger.Info().Msg("network unavailable, suspending sync")
		c.queue.Suspend()
		return
	}

	c.logger.Info().Msg("network available, resuming sync")
	c.queue.Resume()
	c.down.EnqueueFetchRemoteChanges(nil)
	c.up.EnqueueUploadOperations()
}

// onSchemaTooNew runs on the queue worker when the downstream processor
// received a record produced under a newer schema than this build.
func (c *Coordinator) onSchemaTooNew() {
	c.DisableSyncDueOutOfDateLocalAppVersion(context.Background())
}

// onFatal runs on the queue worker after an operation failed permanently.
func (c *Coordinator) onFatal(opName string, err error) {
	c.logger.Error().Err(err).Str("op", opName).Msg("sync operation failed permanently")
	c.StopSyncDueToError(context.Background(), err)
}
