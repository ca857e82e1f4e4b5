// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package models

// SaveRecordsRequest is a batch create/update of remote records. Records
// without SystemFields are creates; records carrying SystemFields are
// optimistic updates and are rejected with a conflict when the stored blob
// no longer matches.
type SaveRecordsRequest struct {
	// Zone is the record zone the batch targets.
	Zone string `json:"zone"`

	// DeviceID identifies the pushing installation so its own changes can
	// be excluded from the change feed it later fetches.
	DeviceID string `json:"device_id"`

	Records []RemoteRecord `json:"records"`
	Length  int            `json:"length"`

	// Hash is an HMAC over Records, letting the server reject batches
	// corrupted or tampered with in transit.
	Hash string `json:"hash,omitempty"`
}

// DeleteRecordsRequest deletes remote records by name, carrying the stored
// system fields for the same optimistic check as updates.
type DeleteRecordsRequest struct {
	Zone     string        `json:"zone"`
	DeviceID string        `json:"device_id"`
	Entries  []DeleteEntry `json:"entries"`
	Length   int           `json:"length"`
}

// DeleteEntry is one record deletion keyed by remote name.
type DeleteEntry struct {
	Type         EntityType `json:"type"`
	Name         string     `json:"name"`
	SystemFields []byte     `json:"system_fields,omitempty"`
}

// FetchRecordsRequest is a targeted fetch of specific records by name,
// used when the service notifies about individual changes outside the
// normal differential flow.
type FetchRecordsRequest struct {
	Zone   string     `json:"zone"`
	Type   EntityType `json:"type"`
	Names  []string   `json:"names"`
	Length int        `json:"length"`
}

// FetchChangesRequest asks for everything that changed for one entity type
// since the supplied token. A zero token requests a full fetch.
type FetchChangesRequest struct {
	Zone     string      `json:"zone"`
	Type     EntityType  `json:"type"`
	Token    ChangeToken `json:"token,omitempty"`
	DeviceID string      `json:"device_id,omitempty"`
	Limit    int         `json:"limit,omitempty"`
}

// EnsureZoneRequest creates the record zone and change subscription if they
// do not already exist. Idempotent.
type EnsureZoneRequest struct {
	Zone     string `json:"zone"`
	DeviceID string `json:"device_id"`
}
