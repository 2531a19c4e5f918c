package statsdb

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNoRowsAffected indicates a guarded update matched no rows,
	// usually because the pipeline state moved underneath us.
	ErrNoRowsAffected = errors.New("no rows affected")
)
