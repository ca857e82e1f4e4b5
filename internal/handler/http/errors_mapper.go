package http

import (
	"errors"
	"net/http"

	"github.com/shelfsync/shelfsync/internal/logger"
	"github.com/shelfsync/shelfsync/internal/service"
	"github.com/shelfsync/shelfsync/internal/store"
	"github.com/shelfsync/shelfsync/internal/utils"
)

// Error codes carried in the JSON error body. They disambiguate conditions
// that share an HTTP status, so clients can match on the code instead of
// guessing from the status alone.
const (
	codeConflict     = "VERSION_CONFLICT"
	codeIDCollision  = "ID_COLLISION"
	codeTokenExpired = "TOKEN_EXPIRED"
	codeZoneNotFound = "ZONE_NOT_FOUND"
	codeSchemaTooNew = "SCHEMA_TOO_NEW"
)

// writeRecordError translates a record-operation failure into the uniform
// JSON error body. Validation failures degrade to a plain 400.
func writeRecordError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, store.ErrVersionMismatch):
		log.Err(err).Msg("stale system fields rejected")
		utils.WriteJSONError(w, codeConflict, http.StatusConflict)
	case errors.Is(err, store.ErrRecordNameExists):
		log.Err(err).Msg("record name collision")
		utils.WriteJSONError(w, codeIDCollision, http.StatusConflict)
	case errors.Is(err, store.ErrChangeTokenExpired):
		log.Err(err).Msg("change cursor expired")
		utils.WriteJSONError(w, codeTokenExpired, http.StatusBadRequest)
	case errors.Is(err, store.ErrZoneNotFound):
		log.Err(err).Msg("zone not found")
		utils.WriteJSONError(w, codeZoneNotFound, http.StatusNotFound)
	case errors.Is(err, service.ErrValidationNoZoneProvided),
		errors.Is(err, service.ErrValidationNoRecordsProvided),
		errors.Is(err, service.ErrValidationLengthMismatch):
		log.Err(err).Msg("invalid record request")
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Err(err).Msg("record operation failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
