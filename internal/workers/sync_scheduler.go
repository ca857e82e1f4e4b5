// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package workers

import (
	"context"
	"sync"
	"time"
)

const defaultSyncInterval = 5 * time.Minute

// SyncScheduler periodically nudges the sync coordinator: each tick queues
// a differential fetch plus an upload pass over pending local edits. The
// coordinator deduplicates queued work, so a tick that lands while a cycle
// is still running costs nothing.
type SyncScheduler struct {
	driver   SyncDriver
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncScheduler creates a scheduler that is idle until Run is called.
// A non-positive interval falls back to five minutes.
func NewSyncScheduler(driver SyncDriver, interval time.Duration) *SyncScheduler {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &SyncScheduler{driver: driver, interval: interval}
}

// Run starts the ticker goroutine. Calling Run on a running scheduler
// restarts it.
func (s *SyncScheduler) Run() {
	s.Stop()

	s.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.driver.FetchRemoteChanges(nil)
				s.driver.NotifyLocalChange()
			}
		}
	}()
}

// Stop cancels the ticker goroutine and blocks until it has exited. Safe to
// call when the scheduler is not running.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}
