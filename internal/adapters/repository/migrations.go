package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/leadsplit/pkg/logger"
)

// migration is one forward-only schema step. The applied version is kept in
// PRAGMA user_version.
type migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

var migrations = []migration{
	{
		Version:     1,
		Description: "agents and list items",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE agents (
					seq           INTEGER PRIMARY KEY AUTOINCREMENT,
					id            TEXT    NOT NULL UNIQUE,
					name          TEXT    NOT NULL,
					email         TEXT    NOT NULL UNIQUE,
					mobile        TEXT    NOT NULL,
					password_hash TEXT    NOT NULL,
					created_at    INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_agents_created ON agents (created_at, seq)`,
				`CREATE TABLE list_items (
					seq         INTEGER PRIMARY KEY AUTOINCREMENT,
					first_name  TEXT    NOT NULL,
					phone       TEXT    NOT NULL,
					notes       TEXT    NOT NULL DEFAULT '',
					assigned_to TEXT    NOT NULL REFERENCES agents (id),
					created_at  INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_list_items_agent ON list_items (assigned_to, seq)`,
			)
		},
	},
	{
		Version:     2,
		Description: "users and email verifications",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE users (
					id            TEXT    PRIMARY KEY,
					email         TEXT    NOT NULL UNIQUE,
					password_hash TEXT    NOT NULL,
					role          TEXT    NOT NULL,
					created_at    INTEGER NOT NULL
				)`,
				`CREATE TABLE email_verifications (
					email      TEXT    PRIMARY KEY,
					otp        TEXT    NOT NULL,
					verified   INTEGER NOT NULL DEFAULT 0,
					created_at INTEGER NOT NULL
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrate applies every migration newer than the database's user_version.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	var current int
	if err := s.db.GetContext(ctx, &current, "PRAGMA user_version"); err != nil {
		return storageError("read schema version", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return err
		}
		s.log.Info(ctx, "migration applied",
			logger.Int("version", m.Version),
			logger.String("description", m.Description))
	}
	return nil
}

func (s *SQLiteStore) applyMigration(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(tx); err != nil {
		return storageError(fmt.Sprintf("migration %d", m.Version), err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return storageError("set schema version", err)
	}
	if err := tx.Commit(); err != nil {
		return storageError("commit migration", err)
	}
	return nil
}

// SchemaVersion returns the applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := s.db.GetContext(ctx, &v, "PRAGMA user_version"); err != nil {
		return 0, storageError("read schema version", err)
	}
	return v, nil
}
