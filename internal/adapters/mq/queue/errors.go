package queue

import "errors"

// Sentinel kinds for enqueue failures.
var (
	ErrClosed = errors.New("feedback queue closed")
	ErrFull   = errors.New("feedback queue full")
)
