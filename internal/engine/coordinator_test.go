// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/models"
)

type fakeMetadata struct {
	mu     sync.Mutex
	resets int
	erases int
}

func (f *fakeMetadata) ResetChangeTracking(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

func (f *fakeMetadata) EraseSyncMetadata(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.erases++
	return nil
}

func (f *fakeMetadata) eraseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.erases
}

type fakeMonitor struct {
	mu        sync.Mutex
	fn        func(bool)
	cancelled bool
}

func (f *fakeMonitor) Subscribe(fn func(available bool)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.cancelled = true
		f.fn = nil
		f.mu.Unlock()
	}
}

func (f *fakeMonitor) notify(available bool) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(available)
	}
}

// expectStartCycle wires the expectations for one full start: environment
// preparation, an empty push cycle and an empty fetch cycle.
func expectStartCycle(m *engineMocks, identity models.AccountIdentity) {
	m.syncState.EXPECT().SetDisabledReason(gomock.Any(), models.ReasonNone).Return(nil)
	m.service.EXPECT().VerifyAccount(gomock.Any()).Return(identity, nil)
	m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).Return(identity, nil)
	m.syncState.EXPECT().DeviceID(gomock.Any()).Return("dev-1", nil).AnyTimes()
	m.service.EXPECT().EnsureZone(gomock.Any(), gomock.Any()).Return(nil)
	m.service.EXPECT().EnsureSubscription(gomock.Any(), gomock.Any()).Return(nil)

	// Empty upstream backlog.
	m.syncState.EXPECT().GetConfirmedTransactionID(gomock.Any()).Return(int64(0), nil).AnyTimes()
	m.txlog.EXPECT().ListAfter(gomock.Any(), int64(0), 50).Return(nil, nil).AnyTimes()

	// Empty downstream feed.
	m.syncState.EXPECT().GetChangeToken(gomock.Any(), gomock.Any()).Return(models.ChangeToken(""), nil).AnyTimes()
	m.service.EXPECT().FetchChanges(gomock.Any(), gomock.Any()).Return(models.RecordChanges{NewToken: "t"}, nil).AnyTimes()
	m.syncState.EXPECT().SetChangeToken(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func waitRunning(t *testing.T, c *Coordinator) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.State() == StateRunning
	}, 5*time.Second, time.Millisecond, "coordinator never reached running state")
	waitIdle(t, c.queue)
}

func TestCoordinator_StartReachesRunning(t *testing.T) {
	deps, m := newEngineMocks(t)
	meta := &fakeMetadata{}
	monitor := &fakeMonitor{}

	c := NewCoordinator(deps, meta, monitor)
	t.Cleanup(c.Close)

	expectStartCycle(m, models.AccountIdentity{RecordName: "acc-1"})

	require.NoError(t, c.Start(context.Background()))
	waitRunning(t, c)

	// Starting again while running is a no-op.
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, StateRunning, c.State())
}

func TestCoordinator_StopIsIdempotent(t *testing.T) {
	deps, m := newEngineMocks(t)
	meta := &fakeMetadata{}
	monitor := &fakeMonitor{}

	c := NewCoordinator(deps, meta, monitor)
	t.Cleanup(c.Close)

	expectStartCycle(m, models.AccountIdentity{RecordName: "acc-1"})
	require.NoError(t, c.Start(context.Background()))
	waitRunning(t, c)

	c.Stop()
	c.Stop()
	assert.Equal(t, StateStopped, c.State())

	monitor.mu.Lock()
	assert.True(t, monitor.cancelled, "stop must unsubscribe from reachability")
	monitor.mu.Unlock()
}

func TestCoordinator_PrepareFailureDisablesSync(t *testing.T) {
	deps, m := newEngineMocks(t)
	meta := &fakeMetadata{}

	c := NewCoordinator(deps, meta, nil)
	t.Cleanup(c.Close)

	m.syncState.EXPECT().SetDisabledReason(gomock.Any(), models.ReasonNone).Return(nil)
	m.service.EXPECT().VerifyAccount(gomock.Any()).
		Return(models.AccountIdentity{}, assert.AnError)

	disabled := make(chan models.DisabledReason, 1)
	m.syncState.EXPECT().SetDisabledReason(gomock.Any(), models.ReasonUnexpectedError).
		DoAndReturn(func(_ any, reason models.DisabledReason) error {
			disabled <- reason
			return nil
		})

	require.NoError(t, c.Start(context.Background()))

	select {
	case reason := <-disabled:
		assert.Equal(t, models.ReasonUnexpectedError, reason)
	case <-time.After(5 * time.Second):
		t.Fatal("sync was never disabled")
	}
	require.Eventually(t, func() bool {
		return c.State() == StateStopped
	}, 5*time.Second, time.Millisecond)
}

func TestCoordinator_SchemaGateDisablesForAppUpdate(t *testing.T) {
	deps, m := newEngineMocks(t)
	c := NewCoordinator(deps, &fakeMetadata{}, nil)
	t.Cleanup(c.Close)

	m.syncState.EXPECT().SetDisabledReason(gomock.Any(), models.ReasonOutOfDateApp).Return(nil)
	c.onSchemaTooNew()
	assert.Equal(t, StateStopped, c.State())
}

func TestCoordinator_ResetChangeTrackingWhileStopped(t *testing.T) {
	deps, _ := newEngineMocks(t)
	meta := &fakeMetadata{}
	c := NewCoordinator(deps, meta, nil)
	t.Cleanup(c.Close)

	require.NoError(t, c.ResetChangeTracking(context.Background()))

	meta.mu.Lock()
	assert.Equal(t, 1, meta.resets)
	meta.mu.Unlock()
}

func TestCoordinator_ForceFullResyncWhileStopped(t *testing.T) {
	deps, _ := newEngineMocks(t)
	meta := &fakeMetadata{}
	c := NewCoordinator(deps, meta, nil)
	t.Cleanup(c.Close)

	require.NoError(t, c.ForceFullResync(context.Background()))
	assert.Equal(t, 1, meta.eraseCount())
	assert.Equal(t, StateStopped, c.State(), "a stopped engine stays stopped after a resync request")
}

func TestCoordinator_AccountChangeTriggersFullRestart(t *testing.T) {
	deps, m := newEngineMocks(t)
	meta := &fakeMetadata{}

	c := NewCoordinator(deps, meta, nil)
	t.Cleanup(c.Close)

	expectStartCycle(m, models.AccountIdentity{RecordName: "acc-1"})
	require.NoError(t, c.Start(context.Background()))
	waitRunning(t, c)

	// The verification discovers a different account behind the token.
	newIdentity := models.AccountIdentity{RecordName: "acc-2"}
	m.service.EXPECT().VerifyAccount(gomock.Any()).
		Return(newIdentity, nil).Times(2) // once to detect, once during the restart
	gomock.InOrder(
		m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).
			Return(models.AccountIdentity{RecordName: "acc-1"}, nil),
		m.syncState.EXPECT().SetAccountIdentity(gomock.Any(), newIdentity).Return(nil),
		m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).Return(newIdentity, nil),
	)
	m.service.EXPECT().EnsureZone(gomock.Any(), gomock.Any()).Return(nil)
	m.service.EXPECT().EnsureSubscription(gomock.Any(), gomock.Any()).Return(nil)

	c.OnAccountChanged()
	waitRunning(t, c)
	assert.Equal(t, 1, meta.eraseCount(), "account switch must erase the previous account's metadata")
}

func TestCoordinator_AccountChangeResumesSuspendedQueue(t *testing.T) {
	deps, m := newEngineMocks(t)
	c := NewCoordinator(deps, &fakeMetadata{}, nil)
	t.Cleanup(c.Close)

	identity := models.AccountIdentity{RecordName: "acc-1"}
	expectStartCycle(m, identity)
	require.NoError(t, c.Start(context.Background()))
	waitRunning(t, c)

	// Offline: the queue holds all work.
	c.queue.Suspend()

	verified := make(chan struct{})
	m.service.EXPECT().VerifyAccount(gomock.Any()).
		DoAndReturn(func(context.Context) (models.AccountIdentity, error) {
			close(verified)
			return identity, nil
		})
	m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).Return(identity, nil)

	c.OnAccountChanged()

	select {
	case <-verified:
	case <-time.After(5 * time.Second):
		t.Fatal("account switch must resume the queue so verification can run")
	}
	waitIdle(t, c.queue)
}

func TestCoordinator_ReachabilityRestoredCatchesUp(t *testing.T) {
	deps, m := newEngineMocks(t)
	monitor := &fakeMonitor{}

	c := NewCoordinator(deps, &fakeMetadata{}, monitor)
	t.Cleanup(c.Close)

	expectStartCycle(m, models.AccountIdentity{RecordName: "acc-1"})
	require.NoError(t, c.Start(context.Background()))
	waitRunning(t, c)

	monitor.notify(false)
	monitor.notify(true) // expectations for the catch-up round are AnyTimes above
	waitIdle(t, c.queue)
	assert.Equal(t, StateRunning, c.State())
}

func TestCoordinator_StatusAggregatesCounts(t *testing.T) {
	deps, m := newEngineMocks(t)
	c := NewCoordinator(deps, &fakeMetadata{}, nil)
	t.Cleanup(c.Close)

	m.books.EXPECT().Counts(gomock.Any()).Return(12, 10, nil)
	m.shelves.EXPECT().Counts(gomock.Any()).Return(3, 3, nil)
	m.syncState.EXPECT().GetConfirmedTransactionID(gomock.Any()).Return(int64(7), nil).Times(2)
	m.txlog.EXPECT().Count(gomock.Any(), int64(7)).Return(2, nil)
	m.txlog.EXPECT().Get(gomock.Any(), int64(7)).
		Return(tx(7, models.EntityBooks, "b1", models.TxUpdate), nil)
	m.syncState.EXPECT().GetDisabledReason(gomock.Any()).Return(models.ReasonNone, nil)

	status, err := c.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, status.ObjectCount[models.EntityBooks])
	assert.Equal(t, 10, status.UploadedObjectCount[models.EntityBooks])
	assert.Equal(t, 3, status.ObjectCount[models.EntityShelves])
	assert.Equal(t, 2, status.PendingPushCount)
	require.NotNil(t, status.LastProcessedTransaction)
	assert.Equal(t, int64(7), status.LastProcessedTransaction.ID)
	assert.False(t, status.Running)
}
