package ratingdb

import "errors"

// Sentinel errors for the repository layer. These are infrastructure
// signals; the service layer decides whether they are domain failures.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRowsAffected indicates an UPDATE matched zero rows, typically
	// because the guarded state transition no longer applies.
	ErrNoRowsAffected = errors.New("no rows affected")
)
