package model

import "errors"

// Sentinel errors for model validation.
var (
	ErrInvariant       = errors.New("analysis invariant violated")
	ErrInvalidFeedback = errors.New("invalid feedback record")
)
