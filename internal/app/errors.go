package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoStore = errors.New("service requires a store")
)
