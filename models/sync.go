package models

// DisabledReason is a persisted tag explaining why sync is currently off.
// Distinct from "stopped", which may just mean "not started".
type DisabledReason string

const (
	// ReasonNone means sync is not disabled.
	ReasonNone DisabledReason = ""

	// ReasonUnexpectedError records a protocol-level invariant violation
	// that must not be silently retried.
	ReasonUnexpectedError DisabledReason = "unexpected_error"

	// ReasonOutOfDateApp records that the remote schema version exceeds
	// what this build understands. Local data is deliberately kept.
	ReasonOutOfDateApp DisabledReason = "out_of_date_app"

	// ReasonUserDisabled records an explicit user/policy decision.
	ReasonUserDisabled DisabledReason = "user_disabled"

	// ReasonAccountUnavailable records that no remote account identity
	// could be verified.
	ReasonAccountUnavailable DisabledReason = "account_unavailable"
)

// SyncStatus is the read-only diagnostics snapshot exposed by the
// coordinator. Uploaded counts are derived from the presence of stored
// system fields, never from a separate counter.
type SyncStatus struct {
	// ObjectCount is the total number of live objects per entity type.
	ObjectCount map[EntityType]int `json:"object_count"`

	// UploadedObjectCount is the number of objects per entity type whose
	// upload has been confirmed (system fields present).
	UploadedObjectCount map[EntityType]int `json:"uploaded_object_count"`

	// LastProcessedTransaction is the latest local transaction whose
	// upload the upstream processor has confirmed, if any.
	LastProcessedTransaction *LocalTransaction `json:"last_processed_transaction,omitempty"`

	// PendingPushCount is the number of local transactions enqueued but
	// not yet confirmed uploaded.
	PendingPushCount int `json:"pending_push_count"`

	// Running reports whether the coordinator is in the Running state.
	Running bool `json:"running"`

	// DisabledReason is set when sync was turned off, until an explicit
	// restart.
	DisabledReason DisabledReason `json:"disabled_reason,omitempty"`
}

// AccountIdentity is the verified remote account identity. The engine
// compares identities across sessions: a change triggers a full resync
// instead of incremental reconciliation across different accounts.
type AccountIdentity struct {
	// RecordName is the stable remote identifier for the account.
	RecordName string `json:"record_name"`
}

// Equal reports whether two identities refer to the same remote account.
func (a AccountIdentity) Equal(other AccountIdentity) bool {
	return a.RecordName == other.RecordName
}

// Zero reports whether the identity is unset.
func (a AccountIdentity) Zero() bool {
	return a.RecordName == ""
}
