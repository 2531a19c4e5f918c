package ratingservice

import "errors"

// Domain errors for the rating service.
// These represent business failures that handlers should treat as normal
// outcomes (publish failure event, ack message) rather than retrying.
var (
	// ErrMatchNotFound indicates the triggering match document does not exist.
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchNotCompleted indicates the match is not in completed status.
	ErrMatchNotCompleted = errors.New("match is not completed")

	// ErrNoSubgames indicates a completed match carries no sub-game results.
	ErrNoSubgames = errors.New("match has no subgame results")

	// ErrEmptyRoster indicates one of the two rosters has no participants.
	ErrEmptyRoster = errors.New("match roster is empty")

	// ErrInvalidSubgame indicates a sub-game carries an unknown winner side
	// or negative scores.
	ErrInvalidSubgame = errors.New("invalid subgame result")
)
