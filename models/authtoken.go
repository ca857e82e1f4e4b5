package models

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// AuthToken wraps a JWT session token used between the engine's remote
// adapter and the record service. SignedString holds the compact serialized
// form ready for the Authorization header; AccountID caches the parsed
// "sub" claim.
type AuthToken struct {
	*jwt.Token `json:"-"`
	jwt.RegisteredClaims

	SignedString string `json:"-"`
	AccountID    int64  `json:"-"`
}

// GetAccountID extracts the account identifier from the "sub" claim and
// parses it as a base-10 int64.
func (t *AuthToken) GetAccountID() (int64, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting account ID from token: %w", err)
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting account ID from token to int64: %w", err)
	}

	return id, nil
}

// String returns the compact JWS serialization of the token.
func (t *AuthToken) String() string {
	return t.SignedString
}
