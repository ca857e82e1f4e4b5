package recordmap

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/models"
)

func TestNew_TableIsComplete(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	for _, k := range bookKeys {
		name, ok := m.RemoteField(k)
		assert.True(t, ok, "book key %q has no remote field", k)
		assert.NotEmpty(t, name)
	}
	for _, k := range shelfKeys {
		name, ok := m.RemoteField(k)
		assert.True(t, ok, "shelf key %q has no remote field", k)
		assert.NotEmpty(t, name)
	}
}

func TestMapper_ExcludedFieldHasNoMapping(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	_, ok := m.RemoteField(FieldKey("book.cover_url"))
	assert.False(t, ok, "locally derived fields must not map to remote fields")
}

func TestMapper_CombinedReadDates(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	started, ok := m.RemoteField(BookStartedReading)
	require.True(t, ok)
	finished, ok := m.RemoteField(BookFinishedReading)
	require.True(t, ok)
	assert.Equal(t, started, finished, "both reading dates feed one combined field")
}

func TestMapper_BookRoundTrip(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	start := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	book := models.Book{
		ID:             "0195a3b2-1111-7aaa-8000-000000000001",
		Title:          "The Left Hand of Darkness",
		Authors:        []string{"Ursula K. Le Guin"},
		Description:    "Winter on Gethen.",
		ISBN:           "9780441478125",
		PageCount:      304,
		CurrentPage:    120,
		Rating:         5,
		Notes:          "reread",
		ReadState:      models.Reading,
		Sort:           3,
		StartedReading: &start,
	}

	fields := m.BookFields(book)

	// Same shape the wire produces: through JSON numbers become float64.
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var got models.Book
	require.NoError(t, m.ApplyBookFields(&got, decoded))

	assert.Equal(t, book.Title, got.Title)
	assert.Equal(t, book.Authors, got.Authors)
	assert.Equal(t, book.Description, got.Description)
	assert.Equal(t, book.ISBN, got.ISBN)
	assert.Equal(t, book.PageCount, got.PageCount)
	assert.Equal(t, book.CurrentPage, got.CurrentPage)
	assert.Equal(t, book.Rating, got.Rating)
	assert.Equal(t, book.Notes, got.Notes)
	assert.Equal(t, book.ReadState, got.ReadState)
	assert.Equal(t, book.Sort, got.Sort)
	require.NotNil(t, got.StartedReading)
	assert.True(t, start.Equal(*got.StartedReading))
	assert.Nil(t, got.FinishedReading)
}

func TestMapper_ShelfRoundTrip(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	shelf := models.Shelf{
		ID:      "0195a3b2-2222-7aaa-8000-000000000002",
		Name:    "science fiction",
		Sort:    1,
		BookIDs: []string{"a", "b", "c"},
	}

	fields := m.ShelfFields(shelf)
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	var got models.Shelf
	require.NoError(t, m.ApplyShelfFields(&got, decoded))

	assert.Equal(t, shelf.Name, got.Name)
	assert.Equal(t, shelf.Sort, got.Sort)
	assert.Equal(t, shelf.BookIDs, got.BookIDs)
}

func TestMapper_ApplyIgnoresUnknownFields(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	var book models.Book
	err = m.ApplyBookFields(&book, map[string]any{
		"title":           "Dune",
		"someFutureField": "ignored",
		"anotherNewThing": 42.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
}

func TestMapper_ApplyRejectsMalformedValues(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		fields map[string]any
	}{
		{name: "title not a string", fields: map[string]any{"title": 7.0}},
		{name: "pageCount not a number", fields: map[string]any{"pageCount": "many"}},
		{name: "authors with non-string element", fields: map[string]any{"authors": []any{"ok", 1.0}}},
		{name: "readDates wrong arity", fields: map[string]any{"readDates": []any{"2026-01-01T00:00:00Z"}}},
		{name: "readDates bad timestamp", fields: map[string]any{"readDates": []any{"yesterday", nil}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var book models.Book
			assert.Error(t, m.ApplyBookFields(&book, tt.fields))
		})
	}
}

func TestMapper_KeyForRemoteField(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	k, ok := m.KeyForRemoteField(models.EntityBooks, "currentPage")
	require.True(t, ok)
	assert.Equal(t, BookCurrentPage, k)

	k, ok = m.KeyForRemoteField(models.EntityShelves, "bookIds")
	require.True(t, ok)
	assert.Equal(t, ShelfBookIDs, k)

	_, ok = m.KeyForRemoteField(models.EntityBooks, "noSuchField")
	assert.False(t, ok)
}

func TestMapper_CombinedFieldResolvesToFirstContributingKey(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	k, ok := m.KeyForRemoteField(models.EntityBooks, readDatesField)
	require.True(t, ok)
	assert.Equal(t, BookStartedReading, k)
}
