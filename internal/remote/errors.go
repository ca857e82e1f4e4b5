package remote

import (
	"errors"
	"time"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("record version conflict")
	ErrIDCollision         = errors.New("record name already exists")
	ErrTokenExpired        = errors.New("change token expired")
	ErrZoneNotFound        = errors.New("record zone not found")
	ErrSchemaTooNew        = errors.New("record schema newer than client")
	ErrRateLimited         = errors.New("rate limited")
	ErrUnavailable         = errors.New("service unavailable")
	ErrInternalServerError = errors.New("internal server error")
)

// RateLimitError wraps [ErrRateLimited] with the server-suggested delay.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string                  { return ErrRateLimited.Error() }
func (e *RateLimitError) Unwrap() error                  { return ErrRateLimited }
func (e *RateLimitError) RetryAfterDelay() time.Duration { return e.RetryAfter }

// IsTransient reports whether err is worth retrying: the service was
// unreachable, overloaded, or asked the client to back off. Conflicts,
// auth failures and schema mismatches are not transient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrInternalServerError)
}
