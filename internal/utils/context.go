// Package utils provides general-purpose helper utilities used across the
// client and server: context keys, keyed hashing, HTTP response writing,
// HTTP client construction, JWT generation and validation, and identifier
// generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys. Using a dedicated type
// instead of a plain string prevents collisions with other packages that
// store string-keyed values in the same context.
type contextKey string

// String implements fmt.Stringer.
func (c contextKey) String() string {
	return string(c)
}

// AccountIDCtxKey is the key under which the authenticated account
// identifier is stored in a request context. Use GetAccountIDFromContext
// for type-safe retrieval.
var AccountIDCtxKey = contextKey("accountID")

// GetAccountIDFromContext retrieves the account identifier from the
// context. ok is false when the value is absent or has an unexpected type.
func GetAccountIDFromContext(ctx context.Context) (int64, bool) {
	accountID, ok := ctx.Value(AccountIDCtxKey).(int64)
	return accountID, ok
}
