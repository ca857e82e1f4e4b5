// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/remote"
	"github.com/shelfsync/shelfsync/models"
)

func TestInitializer_PrepareVerifiesAndEnsuresEnvironment(t *testing.T) {
	deps, m := newEngineMocks(t)
	init := NewInitializer(deps, nil)

	identity := models.AccountIdentity{RecordName: "acc-1"}
	m.service.EXPECT().VerifyAccount(gomock.Any()).Return(identity, nil)
	m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).Return(identity, nil)
	m.syncState.EXPECT().DeviceID(gomock.Any()).Return("dev-1", nil)

	req := models.EnsureZoneRequest{Zone: testZone, DeviceID: "dev-1"}
	m.service.EXPECT().EnsureZone(gomock.Any(), req).Return(nil)
	m.service.EXPECT().EnsureSubscription(gomock.Any(), req).Return(nil)

	done := make(chan error, 1)
	init.Prepare(func(err error) { done <- err })
	require.NoError(t, waitDone(t, done))
	assert.True(t, init.Prepared())

	// A second prepare is a no-op until invalidated.
	done2 := make(chan error, 1)
	init.Prepare(func(err error) { done2 <- err })
	require.NoError(t, waitDone(t, done2))
}

func TestInitializer_FirstRunStoresIdentityWithoutTeardown(t *testing.T) {
	deps, m := newEngineMocks(t)

	hookCalled := false
	init := NewInitializer(deps, func(context.Context) error {
		hookCalled = true
		return nil
	})

	identity := models.AccountIdentity{RecordName: "acc-1"}
	m.service.EXPECT().VerifyAccount(gomock.Any()).Return(identity, nil)
	m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).Return(models.AccountIdentity{}, nil)
	m.syncState.EXPECT().SetAccountIdentity(gomock.Any(), identity).Return(nil)

	done := make(chan error, 1)
	init.VerifyUserRecordID(func(changed bool, err error) {
		assert.False(t, changed, "first run is not an account switch")
		done <- err
	})
	require.NoError(t, waitDone(t, done))
	assert.False(t, hookCalled)
}

func TestInitializer_IdentityChangeRunsTeardownFirst(t *testing.T) {
	deps, m := newEngineMocks(t)

	tornDown := false
	init := NewInitializer(deps, func(context.Context) error {
		tornDown = true
		return nil
	})

	current := models.AccountIdentity{RecordName: "acc-2"}
	m.service.EXPECT().VerifyAccount(gomock.Any()).Return(current, nil)
	m.syncState.EXPECT().GetAccountIdentity(gomock.Any()).
		Return(models.AccountIdentity{RecordName: "acc-1"}, nil)
	m.syncState.EXPECT().SetAccountIdentity(gomock.Any(), current).
		DoAndReturn(func(any, models.AccountIdentity) error {
			assert.True(t, tornDown, "metadata teardown must precede the identity switch")
			return nil
		})

	done := make(chan error, 1)
	var gotChanged bool
	init.VerifyUserRecordID(func(changed bool, err error) {
		gotChanged = changed
		done <- err
	})
	require.NoError(t, waitDone(t, done))
	assert.True(t, gotChanged)
}

func TestInitializer_PrepareReportsPermanentFailure(t *testing.T) {
	deps, m := newEngineMocks(t)
	init := NewInitializer(deps, nil)

	m.service.EXPECT().VerifyAccount(gomock.Any()).Return(models.AccountIdentity{}, remote.ErrUnauthorized)

	done := make(chan error, 1)
	init.Prepare(func(err error) { done <- err })
	require.ErrorIs(t, waitDone(t, done), remote.ErrUnauthorized)
	assert.False(t, init.Prepared())
}
