package repository

import (
	"time"

	"github.com/okian/leadsplit/pkg/logger"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithInsertBatchSize caps the rows written per INSERT statement.
func WithInsertBatchSize(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the time source used for created_at columns.
func WithClock(c Clock) Option {
	return func(s *SQLiteStore) {
		if c != nil {
			s.now = c
		}
	}
}
