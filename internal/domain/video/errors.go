package video

import "errors"

var (
	// ErrEmptyHostedID indicates a hosted reference without a platform id.
	ErrEmptyHostedID = errors.New("hosted video id is empty")
	// ErrInvalidTemplate indicates a URI template without a single %s verb.
	ErrInvalidTemplate = errors.New("hosted uri template must contain exactly one %s")
	// ErrUnknownURL indicates a display URL that was never registered or was already released.
	ErrUnknownURL = errors.New("display url not registered")
)
