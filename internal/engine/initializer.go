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
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/models"
)

// Initializer prepares the remote environment before the first sync cycle:
// it verifies the authenticated account, ensures the record zone and change
// subscription exist, and detects account switches. All of it is idempotent
// and safe to re-run after every start.
type Initializer struct {
	logger    *logger.Logger
	service   remote.RecordService
	syncState store.SyncStateRepository
	queue     *queue.Queue
	zone      string

	// onIdentityChanged is invoked from the queue worker when the verified
	// account differs from the one sync metadata was built for, before the
	// new identity is persisted.
	onIdentityChanged func(ctx context.Context) error

	mu       sync.Mutex
	prepared bool
}

// NewInitializer constructs the remote environment initializer.
// onIdentityChanged may be nil.
func NewInitializer(deps Deps, onIdentityChanged func(ctx context.Context) error) *Initializer {
	return &Initializer{
		logger:            &logger.Logger{Logger: deps.Logger.With().Str("component", "initializer").Logger()},
		service:           deps.Service,
		syncState:         deps.SyncState,
		queue:             deps.Queue,
		zone:              deps.Zone,
		onIdentityChanged: onIdentityChanged,
	}
}

// Prepared reports whether the remote environment has been verified since
// the last start.
func (i *Initializer) Prepared() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.prepared
}

// Invalidate forces the next Prepare to run the full verification again.
func (i *Initializer) Invalidate() {
	i.mu.Lock()
	i.prepared = false
	i.mu.Unlock()
}

// Prepare queues the environment preparation and reports the outcome through
// done, which runs on the queue worker. Transient service failures are
// retried before done fires.
func (i *Initializer) Prepare(done func(error)) {
	i.queue.Enqueue(queue.Operation{
		Name: "initializer.prepare",
		Run: func(ctx context.Context) error {
			err := i.prepare(ctx)
			if err != nil && remote.IsTransient(err) {
				return err
			}
			if done != nil {
				done(err)
			}
			if err != nil {
				return fmt.Errorf("prepare remote environment: %w", err)
			}
			return nil
		},
	})
}

// VerifyUserRecordID queues a re-verification of the account identity, as
// after an account-changed notification. done receives whether the identity
// differs from the one sync metadata was built for; when it does, the
// identity-changed hook has already run.
func (i *Initializer) VerifyUserRecordID(done func(changed bool, err error)) {
	i.queue.Enqueue(queue.Operation{
		Name: "initializer.verify_identity",
		Run: func(ctx context.Context) error {
			changed, err := i.verifyIdentity(ctx)
			if err != nil && remote.IsTransient(err) {
				return err
			}
			if done != nil {
				done(changed, err)
			}
			if err != nil {
				return fmt.Errorf("verify account identity: %w", err)
			}
			return nil
		},
	})
}

func (i *Initializer) prepare(ctx context.Context) error {
	i.mu.Lock()
	prepared := i.prepared
	i.mu.Unlock()
	if prepared {
		return nil
	}

	if _, err := i.verifyIdentity(ctx); err != nil {
		return err
	}

	deviceID, err := i.syncState.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("read device id: %w", err)
	}

	req := models.EnsureZoneRequest{Zone: i.zone, DeviceID: deviceID}
	if err := i.service.EnsureZone(ctx, req); err != nil {
		return fmt.Errorf("ensure zone %q: %w", i.zone, err)
	}
	if err := i.service.EnsureSubscription(ctx, req); err != nil {
		return fmt.Errorf("ensure subscription on %q: %w", i.zone, err)
	}

	i.mu.Lock()
	i.prepared = true
	i.mu.Unlock()
	i.logger.Info().Str("func", "prepare").Str("zone", i.zone).Msg("remote environment ready")
	return nil
}

// verifyIdentity checks the account behind the current token against the
// identity sync metadata was built for. On a mismatch the identity-changed
// hook runs first, then the new identity is persisted.
func (i *Initializer) verifyIdentity(ctx context.Context) (changed bool, err error) {
	identity, err := i.service.VerifyAccount(ctx)
	if err != nil {
		return false, fmt.Errorf("verify account: %w", err)
	}

	stored, err := i.syncState.GetAccountIdentity(ctx)
	if err != nil {
		return false, fmt.Errorf("read stored identity: %w", err)
	}

	if stored.RecordName == identity.RecordName {
		return false, nil
	}

	// First run leaves nothing to tear down.
	if stored.RecordName != "" {
		i.logger.Warn().
			Str("func", "verifyIdentity").
			Str("previous", stored.RecordName).
			Str("current", identity.RecordName).
			Msg("account changed since last sync")
		if i.onIdentityChanged != nil {
			if err := i.onIdentityChanged(ctx); err != nil {
				return true, fmt.Errorf("handle identity change: %w", err)
			}
		}
		changed = true
	}

	if err := i.syncState.SetAccountIdentity(ctx, identity); err != nil {
		return changed, fmt.Errorf("store account identity: %w", err)
	}
	return changed, nil
}
