package models

// ChangeToken is an opaque per-entity-type checkpoint returned by the record
// service. An empty token means "never fetched": the next downstream fetch
// for the type is a full fetch.
type ChangeToken string

// Zero reports whether the token marks an unfetched state.
func (t ChangeToken) Zero() bool {
	return t == ""
}
