package models

// SaveRecordsResponse returns the saved records with the system fields the
// service assigned. The caller must persist each blob before confirming the
// corresponding local transactions.
type SaveRecordsResponse struct {
	Saved []RemoteRecord `json:"saved"`
}

// FetchRecordsResponse returns the requested records. Names that no longer
// exist are reported in Missing instead of erroring the whole batch.
type FetchRecordsResponse struct {
	Records []RemoteRecord `json:"records"`
	Missing []string       `json:"missing,omitempty"`
}

// AccountResponse reports the verified account identity for the caller's
// credentials.
type AccountResponse struct {
	Identity AccountIdentity `json:"identity"`
}

// ErrorResponse is the uniform error body produced by the record service.
type ErrorResponse struct {
	Error string `json:"error"`

	// RetryAfterSeconds accompanies rate-limit errors.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}
