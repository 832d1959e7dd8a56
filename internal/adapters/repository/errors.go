package repository

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/metrics"
)

// Sentinel kinds for repository errors. Each wraps the matching domain kind
// so callers can test with errors.Is against either.
var (
	ErrNotFound  = fmt.Errorf("record %w", model.ErrNotFound)
	ErrDuplicate = fmt.Errorf("record %w", model.ErrConflict)
	ErrClosed    = errors.New("store closed")
)

// storageError wraps a driver failure as model.ErrStorage and counts it.
func storageError(op string, err error) error {
	metrics.RecordStoreError(op)
	return fmt.Errorf("%w: %s: %v", model.ErrStorage, op, err)
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
