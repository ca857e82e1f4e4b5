package http

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/shelfsync/shelfsync/internal/utils"
	"github.com/shelfsync/shelfsync/models"
)

// saveIntegrityCheck verifies the transport hash clients compute over the
// record batch before uploading. A mismatch means the payload was mangled
// in transit; the request is rejected before it reaches the service layer.
//
// Requests without a hash pass through: the hash is an integrity aid, not
// an authentication measure (the HMAC key ships with the client).
func (h *Handler) saveIntegrityCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Records []models.RemoteRecord `json:"records"`
			Hash    string                `json:"hash"`
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.saveIntegrityCheck").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		// restore request body for the handler
		r.Body = io.NopCloser(bytes.NewReader(body))

		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
			h.logger.Err(err).Str("func", "*Handler.saveIntegrityCheck").Msg("failed to decode JSON")
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		if req.Hash == "" {
			next.ServeHTTP(w, r)
			return
		}

		payload, err := json.Marshal(req.Records)
		if err != nil {
			h.logger.Err(err).Str("func", "*Handler.saveIntegrityCheck").Msg("failed to marshal records")
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		hashedBody := hex.EncodeToString(utils.Hash(payload))
		if hashedBody != req.Hash {
			h.logger.Error().Str("func", "*Handler.saveIntegrityCheck").
				Str("hash from request", req.Hash).
				Str("hashed body", hashedBody).
				Msg("hashes are not equal")
			http.Error(w, "Integrity check failed", http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
