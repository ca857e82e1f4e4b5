// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package http

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/mock"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

var handlerAuthConfig = config.ServerAuth{
	TokenSignKey:  "handler-test-key",
	TokenIssuer:   "shelfsync-test",
	TokenDuration: time.Hour,
}

type handlerMocks struct {
	accounts *mock.MockAccountRepository
	records  *mock.MockRecordRepository
}

func newTestServer(t *testing.T) (handlerMocks, *httptest.Server) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := handlerMocks{
		accounts: mock.NewMockAccountRepository(ctrl),
		records:  mock.NewMockRecordRepository(ctrl),
	}

	services := &service.Services{
		Accounts: service.NewAccountService(m.accounts, handlerAuthConfig, logger.Nop()),
		Records:  service.NewRecordAPIService(m.records, logger.Nop()),
	}

	h := NewHandler(services, handlerAuthConfig, "0.1.0-test", logger.Nop())
	srv := httptest.NewServer(h.Init())
	t.Cleanup(srv.Close)
	return m, srv
}

func bearerFor(t *testing.T, accountID int64) string {
	t.Helper()
	token, err := utils.GenerateJWTToken(handlerAuthConfig.TokenIssuer, accountID, handlerAuthConfig.TokenDuration, handlerAuthConfig.TokenSignKey)
	require.NoError(t, err)
	return "Bearer " + token.SignedString
}

func doJSON(t *testing.T, method, url, auth string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

// ── Auth endpoints ──────────────────────────────────────────────────────────

func TestHandler_RegisterReturnsBearerToken(t *testing.T) {
	m, srv := newTestServer(t)

	m.accounts.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, account models.Account) (models.Account, error) {
			account.ID = 11
			account.RecordName = "acc-11"
			return account, nil
		})

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", models.Credentials{Login: "reader", Secret: "sw0rdfish"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tokenString, err := utils.ParseBearerToken(resp.Header.Get("Authorization"))
	require.NoError(t, err)

	parsed, err := utils.ValidateAndParseJWTToken(tokenString, handlerAuthConfig.TokenSignKey, handlerAuthConfig.TokenIssuer)
	require.NoError(t, err)
	assert.Equal(t, int64(11), parsed.AccountID)
}

func TestHandler_RegisterDuplicateLogin(t *testing.T) {
	m, srv := newTestServer(t)

	m.accounts.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		Return(models.Account{}, store.ErrLoginAlreadyExists)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", models.Credentials{Login: "reader", Secret: "sw0rdfish"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandler_LoginWrongSecretIs401(t *testing.T) {
	m, srv := newTestServer(t)

	m.accounts.EXPECT().
		FindAccountByLogin(gomock.Any(), "reader").
		Return(models.Account{}, store.ErrNoAccountFound)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", models.Credentials{Login: "reader", Secret: "guess"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── Bearer middleware ───────────────────────────────────────────────────────

func TestHandler_ProtectedRoutesRejectMissingToken(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/zones/ensure", "", models.EnsureZoneRequest{Zone: "library"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/zones/ensure", "Bearer not-a-jwt", models.EnsureZoneRequest{Zone: "library"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_ExpiredTokenIs401(t *testing.T) {
	_, srv := newTestServer(t)

	expired, err := utils.GenerateJWTToken(handlerAuthConfig.TokenIssuer, 1, -time.Minute, handlerAuthConfig.TokenSignKey)
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/account", "Bearer "+expired.SignedString, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ── Account identity ────────────────────────────────────────────────────────

func TestHandler_GetAccountReportsIdentity(t *testing.T) {
	m, srv := newTestServer(t)

	m.accounts.EXPECT().
		GetAccount(gomock.Any(), int64(11)).
		Return(models.Account{ID: 11, Login: "reader", RecordName: "acc-11"}, nil)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/account", bearerFor(t, 11), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ar models.AccountResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ar))
	assert.Equal(t, "acc-11", ar.Identity.RecordName)
}

// ── Record endpoints ────────────────────────────────────────────────────────

func TestHandler_SaveRecordsVersionConflictCode(t *testing.T) {
	m, srv := newTestServer(t)

	m.records.EXPECT().
		SaveRecords(gomock.Any(), int64(11), gomock.Any()).
		Return(nil, store.ErrVersionMismatch)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/save", bearerFor(t, 11), models.SaveRecordsRequest{
		Zone:    "library",
		Records: []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1"}},
		Length:  1,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "VERSION_CONFLICT", errorCode(t, resp))
}

func TestHandler_SaveRecordsIDCollisionCode(t *testing.T) {
	m, srv := newTestServer(t)

	m.records.EXPECT().
		SaveRecords(gomock.Any(), int64(11), gomock.Any()).
		Return(nil, store.ErrRecordNameExists)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/save", bearerFor(t, 11), models.SaveRecordsRequest{
		Zone:    "library",
		Records: []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1"}},
		Length:  1,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ID_COLLISION", errorCode(t, resp))
}

func TestHandler_SaveRecordsRejectsNewerSchema(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/save", bearerFor(t, 11), models.SaveRecordsRequest{
		Zone:    "library",
		Records: []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1", SchemaVersion: recordmap.SchemaVersion + 1}},
		Length:  1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SCHEMA_TOO_NEW", errorCode(t, resp))
}

func TestHandler_FetchChangesExpiredCursorCode(t *testing.T) {
	m, srv := newTestServer(t)

	m.records.EXPECT().
		FetchChanges(gomock.Any(), int64(11), gomock.Any()).
		Return(models.RecordChanges{}, store.ErrChangeTokenExpired)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/changes", bearerFor(t, 11), models.FetchChangesRequest{
		Zone: "library",
		Type: models.EntityBooks,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, resp))
}

func TestHandler_EnsureZoneRequiresZone(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/zones/ensure", bearerFor(t, 11), models.EnsureZoneRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ── Integrity hash ──────────────────────────────────────────────────────────

func TestHandler_SaveRecordsIntegrityMismatch(t *testing.T) {
	utils.InitHasherPool("integrity-test-key")
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/save", bearerFor(t, 11), models.SaveRecordsRequest{
		Zone:    "library",
		Records: []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1"}},
		Length:  1,
		Hash:    "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandler_SaveRecordsIntegrityMatch(t *testing.T) {
	utils.InitHasherPool("integrity-test-key")
	m, srv := newTestServer(t)

	records := []models.RemoteRecord{{Type: models.EntityBooks, Name: "rec-1", SchemaVersion: recordmap.SchemaVersion}}
	payload, err := json.Marshal(records)
	require.NoError(t, err)

	m.records.EXPECT().
		SaveRecords(gomock.Any(), int64(11), gomock.Any()).
		Return(records, nil)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/records/save", bearerFor(t, 11), models.SaveRecordsRequest{
		Zone:    "library",
		Records: records,
		Length:  1,
		Hash:    hex.EncodeToString(utils.Hash(payload)),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ── Misc ────────────────────────────────────────────────────────────────────

func TestHandler_TraceIDHeaderEchoed(t *testing.T) {
	_, srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/version", nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace-123", resp.Header.Get("X-Trace-ID"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_UnsupportedMethodIs404(t *testing.T) {
	_, srv := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/auth/register", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
