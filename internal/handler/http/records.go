// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package http

import (
	"encoding/json"
	"net/http"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/recordmap"
	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

func (h *Handler) saveRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.SaveRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.saveRecords").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	// A record written against a schema this service does not know cannot
	// be validated or merged here.
	for _, record := range req.Records {
		if record.SchemaVersion > recordmap.SchemaVersion {
			log.Error().Str("func", "*Handler.saveRecords").
				Int("record_schema", record.SchemaVersion).
				Int("service_schema", recordmap.SchemaVersion).
				Msg("record schema is newer than this service")
			utils.WriteJSONError(w, codeSchemaTooNew, http.StatusBadRequest)
			return
		}
	}

	saved, err := h.services.Records.SaveRecords(ctx, accountID, req)
	if err != nil {
		writeRecordError(w, log, err)
		return
	}

	utils.WriteJSON(w, models.SaveRecordsResponse{Saved: saved}, http.StatusOK)
}

func (h *Handler) deleteRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.DeleteRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.deleteRecords").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	if err := h.services.Records.DeleteRecords(ctx, accountID, req); err != nil {
		writeRecordError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) fetchRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.FetchRecordsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.fetchRecords").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.services.Records.FetchRecords(ctx, accountID, req)
	if err != nil {
		writeRecordError(w, log, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) fetchChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	accountID, found := utils.GetAccountIDFromContext(ctx)
	if !found {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.FetchChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.fetchChanges").Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	changes, err := h.services.Records.FetchChanges(ctx, accountID, req)
	if err != nil {
		writeRecordError(w, log, err)
		return
	}

	utils.WriteJSON(w, changes, http.StatusOK)
}
