package app

import (
	"fmt"

	goose "github.com/pressly/goose/v3"

	"github.com/guttosm/quantlevels/internal/logger"
)

// Migrate applies every pending goose migration found in dir.
func Migrate(store *Store, dir string) error {
	if err := goose.SetDialect(store.GooseDialect()); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(store.DB, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersion(store.DB)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	logger.L().Info().Str("driver", store.Driver).Str("dir", dir).Int64("version", version).Msg("migrations applied")
	return nil
}
