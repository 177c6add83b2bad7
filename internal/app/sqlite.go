package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guttosm/quantlevels/config"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// InitSQLite opens (or creates) the SQLite database at cfg.Store.SQLitePath.
//
// The pool is pinned to one connection so staging tables and the merge that
// reads them always share a session, and the journal runs in WAL mode so the
// read API can query while a run writes.
func InitSQLite(cfg config.Config) (*sql.DB, error) {
	path := cfg.Store.SQLitePath
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
	}

	db, err := sqlOpener("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	return db, nil
}

// sqliteOpener is an indirection used by OpenStore.
var sqliteOpener = InitSQLite
