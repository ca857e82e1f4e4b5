// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/mock"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

var testAuthConfig = config.ServerAuth{
	TokenSignKey:  "test-sign-key",
	TokenIssuer:   "shelfsync-test",
	TokenDuration: time.Hour,
}

func newAccountService(t *testing.T) (*mock.MockAccountRepository, AccountService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	accounts := mock.NewMockAccountRepository(ctrl)
	return accounts, NewAccountService(accounts, testAuthConfig, logger.Nop())
}

// ── Register ────────────────────────────────────────────────────────────────

func TestAccountService_RegisterHashesSecret(t *testing.T) {
	accounts, svc := newAccountService(t)
	ctx := context.Background()

	var stored models.Account
	accounts.EXPECT().
		CreateAccount(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, account models.Account) (models.Account, error) {
			stored = account
			account.ID = 7
			account.RecordName = "acc-7"
			return account, nil
		})

	account, token, err := svc.Register(ctx, models.Credentials{Login: "reader", Secret: "sw0rdfish"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Secret, "$argon2id$"), "secret must be stored hashed, got %q", stored.Secret)
	assert.NotContains(t, stored.Secret, "sw0rdfish")

	assert.Equal(t, int64(7), account.ID)
	assert.Empty(t, account.Secret, "hash must not leak back to the caller")

	parsed, err := utils.ValidateAndParseJWTToken(token.SignedString, testAuthConfig.TokenSignKey, testAuthConfig.TokenIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(7), parsed.AccountID)
}

func TestAccountService_RegisterRejectsEmptyCredentials(t *testing.T) {
	_, svc := newAccountService(t)

	_, _, err := svc.Register(context.Background(), models.Credentials{Login: "reader"})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)

	_, _, err = svc.Register(context.Background(), models.Credentials{Secret: "sw0rdfish"})
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

// ── Login ───────────────────────────────────────────────────────────────────

func TestAccountService_LoginRoundTrip(t *testing.T) {
	accounts, svc := newAccountService(t)
	ctx := context.Background()

	hashed, err := hashSecret("sw0rdfish")
	require.NoError(t, err)

	accounts.EXPECT().
		FindAccountByLogin(ctx, "reader").
		Return(models.Account{ID: 3, Login: "reader", Secret: hashed}, nil)

	account, token, err := svc.Login(ctx, models.Credentials{Login: "reader", Secret: "sw0rdfish"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), account.ID)
	assert.Empty(t, account.Secret)
	assert.NotEmpty(t, token.SignedString)
}

func TestAccountService_LoginWrongSecret(t *testing.T) {
	accounts, svc := newAccountService(t)
	ctx := context.Background()

	hashed, err := hashSecret("sw0rdfish")
	require.NoError(t, err)

	accounts.EXPECT().
		FindAccountByLogin(ctx, "reader").
		Return(models.Account{ID: 3, Login: "reader", Secret: hashed}, nil)

	_, _, err = svc.Login(ctx, models.Credentials{Login: "reader", Secret: "guess"})
	assert.ErrorIs(t, err, ErrWrongSecret)
}

func TestAccountService_LoginUnknownLoginLooksLikeWrongSecret(t *testing.T) {
	accounts, svc := newAccountService(t)
	ctx := context.Background()

	accounts.EXPECT().
		FindAccountByLogin(ctx, "nobody").
		Return(models.Account{}, store.ErrNoAccountFound)

	_, _, err := svc.Login(ctx, models.Credentials{Login: "nobody", Secret: "sw0rdfish"})
	assert.ErrorIs(t, err, ErrWrongSecret)
}

// ── Secret hashing ──────────────────────────────────────────────────────────

func TestVerifySecret_MalformedHash(t *testing.T) {
	_, err := verifySecret("sw0rdfish", "not-a-hash")
	assert.Error(t, err)

	_, err = verifySecret("sw0rdfish", "$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA")
	assert.Error(t, err)
}

func TestHashSecret_SaltsAreUnique(t *testing.T) {
	first, err := hashSecret("sw0rdfish")
	require.NoError(t, err)
	second, err := hashSecret("sw0rdfish")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, encoded := range []string{first, second} {
		ok, err := verifySecret("sw0rdfish", encoded)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
