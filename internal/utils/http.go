package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shelfsync/shelfsync/models"
)

// WriteJSON serializes data to JSON and writes it to the response with the
// given status code. If marshaling fails it responds with 500 and returns a
// wrapped error.
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// WriteJSONError writes a structured error body with a machine-readable
// code, so clients can map it back to a sentinel error regardless of the
// HTTP status granularity.
func WriteJSONError(w http.ResponseWriter, code string, statusCode int) {
	_, _ = WriteJSON(w, models.ErrorResponse{Error: code}, statusCode)
}
