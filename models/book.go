package models

import "time"

// ReadState describes how far the user has progressed with a book.
type ReadState string

const (
	ToRead    ReadState = "to_read"
	Reading   ReadState = "reading"
	Finished  ReadState = "finished"
)

// Book is a locally persisted library entry that can be represented as a
// remote record. The RemoteName/SystemFields pair is the sync bookkeeping:
// a book with empty SystemFields has never been confirmed uploaded.
type Book struct {
	// ID is the stable local identity (UUID assigned at creation).
	ID string `json:"id"`

	Title       string     `json:"title"`
	Authors     []string   `json:"authors"`
	Description string     `json:"description,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	PageCount   int        `json:"page_count,omitempty"`
	CurrentPage int        `json:"current_page,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ReadState   ReadState  `json:"read_state"`
	Sort        int        `json:"sort"`
	CoverURL    string     `json:"cover_url,omitempty"`

	// StartedReading and FinishedReading map to a single combined remote
	// field; a change to either re-uploads both.
	StartedReading  *time.Time `json:"started_reading,omitempty"`
	FinishedReading *time.Time `json:"finished_reading,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deleted   bool      `json:"deleted"`

	// RemoteName is the record name assigned on first upload or first
	// download. Empty for books the remote service has never seen.
	RemoteName string `json:"remote_name,omitempty"`

	// SystemFields is the opaque remote metadata blob carried back on
	// every save/fetch and replayed on updates for optimistic concurrency.
	SystemFields []byte `json:"system_fields,omitempty"`
}

// Uploaded reports whether the book has been confirmed stored remotely.
func (b Book) Uploaded() bool {
	return len(b.SystemFields) > 0
}
