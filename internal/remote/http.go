// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package remote

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/shelfsync/shelfsync/internal/config"
	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

type httpRecordService struct {
	client *utils.HTTPClient

	hashKey string

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPRecordService constructs an HTTP/REST implementation of
// [RecordService]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, configures the underlying HTTP client with the
// resolved base URL and request timeout, and initialises the shared HMAC
// hasher pool used for transport integrity hashes.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed
// as a valid URL.
func NewHTTPRecordService(adapterCfg config.Adapter, appCfg config.App, log *logger.Logger) (RecordService, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	utils.InitHasherPool(appCfg.HashKey)

	return &httpRecordService{client: client, hashKey: appCfg.HashKey, logger: log}, nil
}

// transportError classifies a failure of the HTTP transport itself: the
// request produced no response at all (refused connection, DNS failure,
// timeout). Those are [ErrUnavailable] so the operation queue retries them
// instead of treating a dropped packet as fatal.
func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RecordService]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpRecordService) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RecordService].
func (h *httpRecordService) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [RecordService]. It POSTs the credentials to
// POST /api/auth/register. On success the bearer token is extracted from
// the Authorization response header and stored via SetToken.
func (h *httpRecordService) Register(ctx context.Context, creds models.Credentials) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(creds).
		Post("/api/auth/register")
	if err != nil {
		return transportError("register request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("register parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

// Login implements [RecordService]. It POSTs the credentials to
// POST /api/auth/login and stores the returned bearer token via SetToken.
func (h *httpRecordService) Login(ctx context.Context, creds models.Credentials) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(creds).
		Post("/api/auth/login")
	if err != nil {
		return transportError("login request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return fmt.Errorf("login parse bearer token: %w", err)
	}

	h.SetToken(token)
	return nil
}

// VerifyAccount implements [RecordService]. It GETs GET /api/account and
// returns the stable identity of the account the current token belongs to.
func (h *httpRecordService) VerifyAccount(ctx context.Context) (models.AccountIdentity, error) {
	resp, err := h.authedRequest(ctx).Get("/api/account")
	if err != nil {
		return models.AccountIdentity{}, transportError("verify account request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AccountIdentity{}, err
	}

	var ar models.AccountResponse
	if err = json.Unmarshal(resp.Body(), &ar); err != nil {
		return models.AccountIdentity{}, fmt.Errorf("decode account response: %w", err)
	}
	return ar.Identity, nil
}

// EnsureZone implements [RecordService]. It POSTs the zone name to
// POST /api/zones/ensure. The call is idempotent on the server side.
func (h *httpRecordService) EnsureZone(ctx context.Context, req models.EnsureZoneRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/zones/ensure")
	if err != nil {
		return transportError("ensure zone request", err)
	}

	return mapHTTPError(resp)
}

// EnsureSubscription implements [RecordService]. It POSTs the zone and
// device to POST /api/zones/subscriptions. Idempotent.
func (h *httpRecordService) EnsureSubscription(ctx context.Context, req models.EnsureZoneRequest) error {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/zones/subscriptions")
	if err != nil {
		return transportError("ensure subscription request", err)
	}

	return mapHTTPError(resp)
}

// SaveRecords implements [RecordService]. It computes a transport integrity
// hash over req.Records, sets req.Length, POSTs the batch to
// POST /api/records/save and decodes the saved records (carrying fresh
// system fields) from the response. Returns [ErrConflict] (wrapped) when
// the server rejects a record whose system fields are stale and
// [ErrIDCollision] when a created record name already exists.
func (h *httpRecordService) SaveRecords(ctx context.Context, req models.SaveRecordsRequest) ([]models.RemoteRecord, error) {
	req.Hash = computeTransportHash(req.Records)
	req.Length = len(req.Records)

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/save")
	if err != nil {
		return nil, transportError("save records request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var sr models.SaveRecordsResponse
	if err = json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode save records response: %w", err)
	}

	return sr.Saved, nil
}

// DeleteRecords implements [RecordService]. It sets req.Length and sends
// the batch to DELETE /api/records. Unknown record names are ignored by the
// server; stale system fields yield [ErrConflict] (wrapped).
func (h *httpRecordService) DeleteRecords(ctx context.Context, req models.DeleteRecordsRequest) error {
	req.Length = len(req.Entries)

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Delete("/api/records")
	if err != nil {
		return transportError("delete records request", err)
	}

	return mapHTTPError(resp)
}

// FetchRecords implements [RecordService]. It POSTs the wanted record names
// to POST /api/records/fetch and returns the current server revisions plus
// the names the server does not know.
func (h *httpRecordService) FetchRecords(ctx context.Context, req models.FetchRecordsRequest) (models.FetchRecordsResponse, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/fetch")
	if err != nil {
		return models.FetchRecordsResponse{}, transportError("fetch records request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.FetchRecordsResponse{}, err
	}

	var fr models.FetchRecordsResponse
	if err = json.Unmarshal(resp.Body(), &fr); err != nil {
		return models.FetchRecordsResponse{}, fmt.Errorf("decode fetch records response: %w", err)
	}
	return fr, nil
}

// FetchChanges implements [RecordService]. It POSTs the change cursor to
// POST /api/records/changes and returns one page of changes with the next
// token. A stale cursor yields [ErrTokenExpired] (wrapped); callers are
// expected to drop the token and refetch from scratch.
func (h *httpRecordService) FetchChanges(ctx context.Context, req models.FetchChangesRequest) (models.RecordChanges, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/records/changes")
	if err != nil {
		return models.RecordChanges{}, transportError("fetch changes request", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RecordChanges{}, err
	}

	var rc models.RecordChanges
	if err = json.Unmarshal(resp.Body(), &rc); err != nil {
		return models.RecordChanges{}, fmt.Errorf("decode fetch changes response: %w", err)
	}
	return rc, nil
}

func (h *httpRecordService) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

func computeTransportHash(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return hex.EncodeToString(utils.Hash(payload))
}
