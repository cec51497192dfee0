package metric

import "errors"

// Sentinel errors for registry construction.
var (
	ErrInvalidWeight     = errors.New("metric weight out of (0,1]")
	ErrInvalidDifficulty = errors.New("metric difficulty out of [1,10]")
	ErrDuplicateMetric   = errors.New("duplicate metric key")
	ErrEmptyKey          = errors.New("empty metric key")
	ErrDanglingAlias     = errors.New("alias points at an unregistered metric")
)
