// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package models

// EntityType identifies a syncable local entity kind. The set is ordered:
// the downstream processor applies remote changes type by type in
// registration order so that later types can reference earlier ones.
type EntityType string

const (
	EntityBooks   EntityType = "books"
	EntityShelves EntityType = "shelves"
)

// SyncedEntityTypes lists every syncable type in apply order.
var SyncedEntityTypes = []EntityType{EntityBooks, EntityShelves}

// RemoteRecord is the wire representation of one entity on the record
// service: a named bag of typed fields plus the opaque system-fields blob
// the service uses for optimistic concurrency.
type RemoteRecord struct {
	// Type is the entity type the record belongs to.
	Type EntityType `json:"type"`

	// Name is the remote-assigned record identifier, stable for the
	// lifetime of the record.
	Name string `json:"name"`

	// SchemaVersion is the field-mapping version the record was produced
	// under. A record produced under a newer version than this build
	// understands must not be partially interpreted.
	SchemaVersion int `json:"schema_version"`

	// Fields holds the mapped field values keyed by remote field name.
	Fields map[string]any `json:"fields"`

	// SystemFields is opaque per-record metadata. It must be echoed back
	// on update/delete; a mismatch is reported as a conflict.
	SystemFields []byte `json:"system_fields,omitempty"`

	// Deleted marks a tombstone in a change feed.
	Deleted bool `json:"deleted,omitempty"`
}

// RecordChanges is one page of a differential fetch: everything that changed
// in a zone for one entity type since the supplied change token.
type RecordChanges struct {
	Changed []RemoteRecord `json:"changed"`

	// DeletedNames lists record names deleted since the token. A name
	// present both here and in Changed is deleted; delete wins.
	DeletedNames []string `json:"deleted_names"`

	// NewToken is the checkpoint to persist once the batch is durably
	// applied. Never persist it before.
	NewToken ChangeToken `json:"new_token"`

	// More reports that further pages exist beyond this batch.
	More bool `json:"more"`
}
