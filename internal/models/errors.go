package models

import "errors"

var (
	// ErrUserInputIncomplete is reported when a commit is attempted with the wrong pixel count.
	// The selection is retained and the session continues.
	ErrUserInputIncomplete = errors.New("selection incomplete")

	// ErrMissingPendingEdge is returned for a ChorSclera commit with no staged RPEChor edge
	ErrMissingPendingEdge = errors.New("no pending RPEChor edge")

	// ErrMalformedPersistedState is returned when a staging or output table cannot be parsed
	ErrMalformedPersistedState = errors.New("malformed persisted state")

	// ErrInvalidImage is returned when an image fails to decode or has unsupported dimensionality
	ErrInvalidImage = errors.New("invalid image")
)
