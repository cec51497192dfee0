package parse

import "errors"

// Sentinel errors for model output parsing.
var (
	ErrUnparseable   = errors.New("no JSON object in model output")
	ErrMissingFields = errors.New("model output missing required fields")
)
