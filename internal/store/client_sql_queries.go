// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package store

import (
	sq "github.com/Masterminds/squirrel"
)

const (
	upsertBook = `
		INSERT INTO books (
			id,
			title,
			authors,
			description,
			isbn,
			page_count,
			current_page,
			rating,
			notes,
			read_state,
			sort,
			cover_url,
			started_reading,
			finished_reading,
			created_at,
			updated_at,
			deleted,
			remote_name,
			system_fields
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			title            = excluded.title,
			authors          = excluded.authors,
			description      = excluded.description,
			isbn             = excluded.isbn,
			page_count       = excluded.page_count,
			current_page     = excluded.current_page,
			rating           = excluded.rating,
			notes            = excluded.notes,
			read_state       = excluded.read_state,
			sort             = excluded.sort,
			cover_url        = excluded.cover_url,
			started_reading  = excluded.started_reading,
			finished_reading = excluded.finished_reading,
			updated_at       = excluded.updated_at,
			deleted          = excluded.deleted,
			remote_name      = excluded.remote_name,
			system_fields    = excluded.system_fields;`

	selectBookColumns = `
		SELECT
			id,
			title,
			authors,
			description,
			isbn,
			page_count,
			current_page,
			rating,
			notes,
			read_state,
			sort,
			cover_url,
			started_reading,
			finished_reading,
			created_at,
			updated_at,
			deleted,
			remote_name,
			system_fields
		FROM books`

	getSingleBook       = selectBookColumns + ` WHERE id = $1;`
	getBookByRemoteName = selectBookColumns + ` WHERE remote_name = $1;`
	getAllBooks         = selectBookColumns + ` WHERE deleted = false ORDER BY sort, created_at;`

	softDeleteBook = `
		UPDATE books SET
			deleted    = true,
			updated_at = $1
		WHERE id = $2;`

	setBookSystemFields = `
		UPDATE books SET
			remote_name   = $1,
			system_fields = $2
		WHERE id = $3;`

	removeBook = `DELETE FROM books WHERE id = $1;`

	countBooks = `
		SELECT
			COUNT(*),
			COUNT(system_fields)
		FROM books
		WHERE deleted = false;`

	clearBookSyncMetadata = `
		UPDATE books SET
			remote_name   = NULL,
			system_fields = NULL;`

	upsertShelf = `
		INSERT INTO shelves (
			id,
			name,
			sort,
			book_ids,
			created_at,
			updated_at,
			deleted,
			remote_name,
			system_fields
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name          = excluded.name,
			sort          = excluded.sort,
			book_ids      = excluded.book_ids,
			updated_at    = excluded.updated_at,
			deleted       = excluded.deleted,
			remote_name   = excluded.remote_name,
			system_fields = excluded.system_fields;`

	selectShelfColumns = `
		SELECT
			id,
			name,
			sort,
			book_ids,
			created_at,
			updated_at,
			deleted,
			remote_name,
			system_fields
		FROM shelves`

	getSingleShelf       = selectShelfColumns + ` WHERE id = $1;`
	getShelfByRemoteName = selectShelfColumns + ` WHERE remote_name = $1;`
	getAllShelves        = selectShelfColumns + ` WHERE deleted = false ORDER BY sort, created_at;`

	softDeleteShelf = `
		UPDATE shelves SET
			deleted    = true,
			updated_at = $1
		WHERE id = $2;`

	setShelfSystemFields = `
		UPDATE shelves SET
			remote_name   = $1,
			system_fields = $2
		WHERE id = $3;`

	removeShelf = `DELETE FROM shelves WHERE id = $1;`

	countShelves = `
		SELECT
			COUNT(*),
			COUNT(system_fields)
		FROM shelves
		WHERE deleted = false;`

	clearShelfSyncMetadata = `
		UPDATE shelves SET
			remote_name   = NULL,
			system_fields = NULL;`

	appendTransaction = `
		INSERT INTO sync_transactions (entity_type, entity_id, kind, changed_fields, at)
		VALUES ($1, $2, $3, $4, $5);`

	getTransaction = `
		SELECT id, entity_type, entity_id, kind, changed_fields, at
		FROM sync_transactions
		WHERE id = $1;`

	countTransactionsAfter = `
		SELECT COUNT(*)
		FROM sync_transactions
		WHERE id > $1;`

	clearTransactions = `DELETE FROM sync_transactions;`

	getSyncStateValue = `SELECT value FROM sync_state WHERE key = $1;`

	upsertSyncStateValue = `
		INSERT INTO sync_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteSyncStateKeysLike = `DELETE FROM sync_state WHERE key LIKE $1;`
)

// sqliteBuilder produces queries with $N placeholders matching the const
// statements above.
var sqliteBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildListTransactionsAfter builds the ordered log read the upstream
// processor drains: transactions past the confirmed checkpoint, oldest
// first, optionally capped.
func buildListTransactionsAfter(afterID int64, limit int) (string, []any, error) {
	b := sqliteBuilder.
		Select("id", "entity_type", "entity_id", "kind", "changed_fields", "at").
		From("sync_transactions").
		Where(sq.Gt{"id": afterID}).
		OrderBy("id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}

	return b.ToSql()
}

// buildSelectBooksByIDs builds an IN query for materializing shelf
// contents.
func buildSelectBooksByIDs(ids []string) (string, []any, error) {
	return sqliteBuilder.
		Select(
			"id", "title", "authors", "description", "isbn", "page_count",
			"current_page", "rating", "notes", "read_state", "sort",
			"cover_url", "started_reading", "finished_reading", "created_at",
			"updated_at", "deleted", "remote_name", "system_fields",
		).
		From("books").
		Where(sq.Eq{"id": ids}).
		OrderBy("sort", "created_at").
		ToSql()
}
