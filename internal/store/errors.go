package store

import "errors"

var (
	// ErrBookNotFound is returned when a queried book does not exist locally.
	ErrBookNotFound = errors.New("book not found")

	// ErrShelfNotFound is returned when a queried shelf does not exist locally.
	ErrShelfNotFound = errors.New("shelf not found")

	// ErrLoginAlreadyExists is returned on account creation when the login
	// is already taken.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoAccountFound is returned when no account matches the given login.
	ErrNoAccountFound = errors.New("no account was found")

	// ErrZoneNotFound is returned when a record operation targets a zone the
	// account has not created.
	ErrZoneNotFound = errors.New("record zone not found")

	// ErrRecordNotFound is returned when a record lookup by name finds
	// nothing.
	ErrRecordNotFound = errors.New("record not found")

	// ErrRecordNameExists is returned when a create collides with an
	// existing record name in the same zone.
	ErrRecordNameExists = errors.New("record name already exists")

	// ErrVersionMismatch is returned when the system fields presented with
	// an update or delete do not match the stored revision.
	ErrVersionMismatch = errors.New("record version mismatch")

	// ErrChangeTokenExpired is returned when a differential fetch presents
	// a cursor older than the zone's tombstone retention floor.
	ErrChangeTokenExpired = errors.New("change token expired")
)
