package repository

import "time"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithBusyRetries sets how many times a write is retried while the database is locked.
func WithBusyRetries(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.busyRetries = n
		}
	}
}
