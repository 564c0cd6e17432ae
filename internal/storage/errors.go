package storage

import "errors"

// Sentinel errors shared by the memory and database stores.
var (
	// ErrNotFound means no row matched the lookup.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey means the key is already stored. Raw swap records,
	// reports and snapshots are written once and never updated.
	ErrDuplicateKey = errors.New("duplicate key: record already stored")

	// ErrInvalidInput means a nil record or an empty key field.
	ErrInvalidInput = errors.New("invalid input")
)
