// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/mock"
	"github.com/shelfsync/shelfsync/internal/queue"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/remote"
)

// engineMocks bundles the mocked collaborators every processor test needs.
type engineMocks struct {
	service   *mock.MockRecordService
	books     *mock.MockBookRepository
	shelves   *mock.MockShelfRepository
	txlog     *mock.MockTransactionLogRepository
	syncState *mock.MockSyncStateRepository
	queue     *queue.Queue
}

const testZone = "library"

func newEngineMocks(t *testing.T) (Deps, *engineMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	q := queue.New(queue.Config{
		Logger:      logger.Nop(),
		IsTransient: remote.IsTransient,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
	})
	t.Cleanup(q.Close)

	mapper, err := recordmap.New()
	require.NoError(t, err)

	m := &engineMocks{
		service:   mock.NewMockRecordService(ctrl),
		books:     mock.NewMockBookRepository(ctrl),
		shelves:   mock.NewMockShelfRepository(ctrl),
		txlog:     mock.NewMockTransactionLogRepository(ctrl),
		syncState: mock.NewMockSyncStateRepository(ctrl),
		queue:     q,
	}

	deps := Deps{
		Logger:     logger.Nop(),
		Service:    m.service,
		Books:      m.books,
		Shelves:    m.shelves,
		Txlog:      m.txlog,
		SyncState:  m.syncState,
		Mapper:     mapper,
		Queue:      q,
		Zone:       testZone,
		FetchLimit: 50,
	}
	return deps, m
}

func waitIdle(t *testing.T, q *queue.Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.WaitIdle(ctx))
}

// waitDone blocks until the done callback of a queued operation fired.
func waitDone(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not complete in time")
		return nil
	}
}
