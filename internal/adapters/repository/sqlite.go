package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver

	"github.com/okian/leadsplit/pkg/logger"
	"github.com/okian/leadsplit/pkg/metrics"
)

const (
	driverName         = "sqlite3"
	defaultBusyTimeout = 5 * time.Second
	defaultBatchSize   = 200
)

// flavor is the SQL dialect used by every builder in this package.
var flavor = sqlbuilder.SQLite

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db          *sqlx.DB
	log         logger.Logger
	busyTimeout time.Duration
	batchSize   int
	now         Clock
	closed      atomic.Bool
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		batchSize:   defaultBatchSize,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("repository")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on",
		path, s.busyTimeout.Milliseconds())
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, storageError("open", err)
	}
	// SQLite allows one writer; a single connection keeps transactions serialized.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info(ctx, "store opened", logger.String("path", path))
	return s, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := s.db.PingContext(ctx); err != nil {
		return storageError("ping", err)
	}
	return nil
}

// Close releases the database handle. Subsequent calls are no-ops.
func (s *SQLiteStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return storageError("close", err)
	}
	return nil
}

// observe records the latency of op started at begin.
func observe(op string, begin time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(begin).Microseconds())/1000.0)
}

func (s *SQLiteStore) checkOpen() error {
	if s.closed.Load() {
		return ErrClosed
	}
	return nil
}
