package statsservice

import "errors"

// Domain errors for the stats service.
var (
	// ErrMatchNotFound indicates the triggering match document does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchNotRated indicates the rating stage has not committed yet.
	// Handlers treat this as retryable: the rated event may have been
	// delivered ahead of a replicated read.
	ErrMatchNotRated = errors.New("match is not rated yet")
)
