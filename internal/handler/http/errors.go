// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package http

import "errors"

// Sentinel errors used by the authentication middleware when parsing the
// "Authorization" HTTP header.
var (
	// ErrEmptyAuthorizationHeader is returned when the incoming request does
	// not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidAuthorizationHeader is returned when the header is present
	// but the token value is missing.
	ErrInvalidAuthorizationHeader = errors.New("invalid `Authorization` header")
)
