// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package recordmap translates between local entity fields and remote record
// fields. The mapping is a fixed bidirectional table validated for
// completeness at construction, so unmapped syncable fields fail fast at
// startup instead of silently dropping data.
//
// Any change to the table must be paired with a [SchemaVersion] bump so that
// peers running an older mapping can detect records they cannot fully
// interpret.
package recordmap

import (
	"fmt"
	"time"

	"github.com/shelfsync/shelfsync/models"
)

// SchemaVersion is the version of the field-mapping table. Every outgoing
// record is stamped with it; an incoming record stamped with a greater
// version must not be interpreted.
const SchemaVersion = 2

// FieldKey identifies one syncable local field.
type FieldKey string

// Book field keys.
const (
	BookTitle           FieldKey = "book.title"
	BookAuthors         FieldKey = "book.authors"
	BookDescription     FieldKey = "book.description"
	BookISBN            FieldKey = "book.isbn"
	BookPageCount       FieldKey = "book.page_count"
	BookCurrentPage     FieldKey = "book.current_page"
	BookRating          FieldKey = "book.rating"
	BookNotes           FieldKey = "book.notes"
	BookReadState       FieldKey = "book.read_state"
	BookSort            FieldKey = "book.sort"
	BookStartedReading  FieldKey = "book.started_reading"
	BookFinishedReading FieldKey = "book.finished_reading"
)

// Shelf field keys.
const (
	ShelfName    FieldKey = "shelf.name"
	ShelfSort    FieldKey = "shelf.sort"
	ShelfBookIDs FieldKey = "shelf.book_ids"
)

// readDatesField is the combined remote field fed by both
// BookStartedReading and BookFinishedReading. Either local field resolves
// to it, so a change to either re-uploads the combined value.
const readDatesField = "readDates"

// remoteNames is the authoritative local-key → remote-field table.
// Two keys may share a remote name only for combined fields.
var remoteNames = map[FieldKey]string{
	BookTitle:           "title",
	BookAuthors:         "authors",
	BookDescription:     "bookDescription",
	BookISBN:            "isbn",
	BookPageCount:       "pageCount",
	BookCurrentPage:     "currentPage",
	BookRating:          "rating",
	BookNotes:           "notes",
	BookReadState:       "readState",
	BookSort:            "sort",
	BookStartedReading:  readDatesField,
	BookFinishedReading: readDatesField,

	ShelfName:    "name",
	ShelfSort:    "sort",
	ShelfBookIDs: "bookIds",
}

// bookKeys and shelfKeys enumerate every syncable field per type. Fields
// deliberately absent (e.g. the locally cached cover URL, which is derived
// from the ISBN lookup) have no mapping and are never uploaded.
var bookKeys = []FieldKey{
	BookTitle, BookAuthors, BookDescription, BookISBN, BookPageCount,
	BookCurrentPage, BookRating, BookNotes, BookReadState, BookSort,
	BookStartedReading, BookFinishedReading,
}

var shelfKeys = []FieldKey{ShelfName, ShelfSort, ShelfBookIDs}

// Mapper is the validated bidirectional field table. Construct with [New];
// the zero value is not usable.
type Mapper struct {
	names   map[FieldKey]string
	reverse map[models.EntityType]map[string]FieldKey
}

// New builds a Mapper and checks the table for completeness: every
// enumerated key must have a remote name, and within one entity type two
// keys may only collide on a declared combined field.
func New() (*Mapper, error) {
	m := &Mapper{
		names:   remoteNames,
		reverse: make(map[models.EntityType]map[string]FieldKey, 2),
	}

	for entity, keys := range map[models.EntityType][]FieldKey{
		models.EntityBooks:   bookKeys,
		models.EntityShelves: shelfKeys,
	} {
		rev := make(map[string]FieldKey, len(keys))
		for _, k := range keys {
			name, ok := remoteNames[k]
			if !ok || name == "" {
				return nil, fmt.Errorf("field key %q has no remote name", k)
			}
			if prev, dup := rev[name]; dup {
				if name != readDatesField {
					return nil, fmt.Errorf("remote field %q mapped by both %q and %q", name, prev, k)
				}
				// Combined field: the first contributing key stays.
				continue
			}
			rev[name] = k
		}
		m.reverse[entity] = rev
	}

	return m, nil
}

// RemoteField returns the remote field name for a local field key, or false
// for fields intentionally excluded from sync.
func (m *Mapper) RemoteField(key FieldKey) (string, bool) {
	name, ok := m.names[key]
	return name, ok
}

// KeyForRemoteField resolves a remote field name back to a local field key
// for the given entity type. For combined fields the first contributing key
// is returned; callers apply combined values through the Apply helpers,
// which handle all contributing fields at once.
func (m *Mapper) KeyForRemoteField(entity models.EntityType, name string) (FieldKey, bool) {
	rev, ok := m.reverse[entity]
	if !ok {
		return "", false
	}
	k, ok := rev[name]
	return k, ok
}

// BookFields maps a book to its remote record fields.
func (m *Mapper) BookFields(b models.Book) map[string]any {
	fields := map[string]any{
		"title":           b.Title,
		"authors":         append([]string(nil), b.Authors...),
		"bookDescription": b.Description,
		"isbn":            b.ISBN,
		"pageCount":       b.PageCount,
		"currentPage":     b.CurrentPage,
		"rating":          b.Rating,
		"notes":           b.Notes,
		"readState":       string(b.ReadState),
		"sort":            b.Sort,
	}
	fields[readDatesField] = encodeReadDates(b.StartedReading, b.FinishedReading)
	return fields
}

// ShelfFields maps a shelf to its remote record fields.
func (m *Mapper) ShelfFields(s models.Shelf) map[string]any {
	return map[string]any{
		"name":    s.Name,
		"sort":    s.Sort,
		"bookIds": append([]string(nil), s.BookIDs...),
	}
}

// ApplyBookFields writes remote record fields onto a book. Unknown fields
// are ignored so older records remain readable; malformed values error.
func (m *Mapper) ApplyBookFields(b *models.Book, fields map[string]any) error {
	for name, v := range fields {
		var err error
		switch name {
		case "title":
			b.Title, err = asString(name, v)
		case "authors":
			b.Authors, err = asStringSlice(name, v)
		case "bookDescription":
			b.Description, err = asString(name, v)
		case "isbn":
			b.ISBN, err = asString(name, v)
		case "pageCount":
			b.PageCount, err = asInt(name, v)
		case "currentPage":
			b.CurrentPage, err = asInt(name, v)
		case "rating":
			b.Rating, err = asInt(name, v)
		case "notes":
			b.Notes, err = asString(name, v)
		case "readState":
			var s string
			if s, err = asString(name, v); err == nil {
				b.ReadState = models.ReadState(s)
			}
		case "sort":
			b.Sort, err = asInt(name, v)
		case readDatesField:
			b.StartedReading, b.FinishedReading, err = decodeReadDates(v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ApplyShelfFields writes remote record fields onto a shelf.
func (m *Mapper) ApplyShelfFields(s *models.Shelf, fields map[string]any) error {
	for name, v := range fields {
		var err error
		switch name {
		case "name":
			s.Name, err = asString(name, v)
		case "sort":
			s.Sort, err = asInt(name, v)
		case "bookIds":
			s.BookIDs, err = asStringSlice(name, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeReadDates packs the two reading dates into the combined remote
// value: a two-element array of RFC 3339 strings or nulls.
func encodeReadDates(started, finished *time.Time) []any {
	dates := make([]any, 2)
	if started != nil {
		dates[0] = started.UTC().Format(time.RFC3339)
	}
	if finished != nil {
		dates[1] = finished.UTC().Format(time.RFC3339)
	}
	return dates
}

func decodeReadDates(v any) (started, finished *time.Time, err error) {
	if v == nil {
		return nil, nil, nil
	}
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return nil, nil, fmt.Errorf("field %q: expected two-element array, got %T", readDatesField, v)
	}

	parse := func(x any) (*time.Time, error) {
		if x == nil {
			return nil, nil
		}
		s, ok := x.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected RFC 3339 string, got %T", readDatesField, x)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", readDatesField, err)
		}
		return &t, nil
	}

	if started, err = parse(arr[0]); err != nil {
		return nil, nil, err
	}
	if finished, err = parse(arr[1]); err != nil {
		return nil, nil, err
	}
	return started, finished, nil
}

func asString(name string, v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", name, v)
	}
	return s, nil
}

// asInt accepts both int and float64 because JSON decoding produces float64.
func asInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("field %q: expected number, got %T", name, v)
	}
}

func asStringSlice(name string, v any) ([]string, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string(nil), s...), nil
	case []any:
		out := make([]string, 0, len(s))
		for _, x := range s {
			str, ok := x.(string)
			if !ok {
				return nil, fmt.Errorf("field %q: expected string element, got %T", name, x)
			}
			out = append(out, str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("field %q: expected string array, got %T", name, v)
	}
}
