package models

import "time"

// Shelf is a named, ordered collection of books. Shelves are synchronized
// after books: a downloaded shelf may reference books delivered in the same
// batch, so book records must be materialized first.
type Shelf struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Sort    int      `json:"sort"`
	BookIDs []string `json:"book_ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deleted   bool      `json:"deleted"`

	RemoteName   string `json:"remote_name,omitempty"`
	SystemFields []byte `json:"system_fields,omitempty"`
}

// Uploaded reports whether the shelf has been confirmed stored remotely.
func (s Shelf) Uploaded() bool {
	return len(s.SystemFields) > 0
}
