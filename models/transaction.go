// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package models

import "time"

// TransactionKind is the kind of local store mutation a transaction records.
type TransactionKind string

const (
	TxInsert TransactionKind = "insert"
	TxUpdate TransactionKind = "update"
	TxDelete TransactionKind = "delete"
)

// LocalTransaction is one atomic local commit, written by the persistence
// layer in the same database transaction as the mutation itself. IDs are
// monotonically increasing and gap-free ordering is guaranteed by the store.
// The sync engine only reads transactions and checkpoints past them; it
// never creates or destroys them.
type LocalTransaction struct {
	ID         int64           `json:"id"`
	EntityType EntityType      `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	Kind       TransactionKind `json:"kind"`

	// ChangedFields names the mapped local fields the mutation touched.
	// Empty for inserts and deletes (the whole entity is implied).
	ChangedFields []string `json:"changed_fields,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
