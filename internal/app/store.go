package app

import (
	"database/sql"
	"fmt"

	"github.com/guttosm/quantlevels/config"
	"github.com/guttosm/quantlevels/internal/logger"
	"github.com/guttosm/quantlevels/internal/storage"
)

// Store bundles an open database with the engine that speaks its dialect.
type Store struct {
	DB     *sql.DB
	Engine storage.Engine
	Driver string
}

// OpenStore connects to the store selected by cfg.Store.Driver.
func OpenStore(cfg config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres, "":
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return &Store{DB: db, Engine: storage.NewPostgresEngine(db), Driver: config.DriverPostgres}, nil
	case config.DriverSQLite:
		db, err := sqliteOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		return &Store{DB: db, Engine: storage.NewSQLiteEngine(db), Driver: config.DriverSQLite}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
}

// Repository returns the levels repository over the configured table.
func (s *Store) Repository(cfg config.Config) storage.LevelsRepository {
	return storage.NewLevelsRepository(s.DB, s.Engine.Dialect(), cfg.Levels.Table)
}

// GooseDialect names the goose dialect matching the store.
func (s *Store) GooseDialect() string {
	if s.Driver == config.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Close releases the database handle.
func (s *Store) Close() {
	if err := s.DB.Close(); err != nil {
		logger.L().Warn().Err(err).Str("driver", s.Driver).Msg("store close failed")
	}
}
