// Copyright (c) 2026 Aegis. All rights reserved.

/*
Package migration runs database schema migrations at application startup.

It wraps golang-migrate with the project's structured logging so migration
activity shows up in the same JSON stream as the rest of the boot sequence.
*/
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// migrateLogger bridges golang-migrate's logging interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

func (m *migrateLogger) Printf(format string, v ...interface{}) {
	m.logger.Info("migration", slog.String("detail", fmt.Sprintf(format, v...)))
}

func (m *migrateLogger) Verbose() bool {
	return false
}

/*
RunUp applies all pending "up" migrations from the given source directory.

Parameters:
  - sourcePath: string (filesystem path holding the .sql migration pairs)
  - databaseURL: string (Postgres DSN; rewritten to the pgx5 driver scheme)
  - logger: *slog.Logger

Returns:
  - error: nil when the schema is current (including "no change")
*/
func RunUp(sourcePath, databaseURL string, logger *slog.Logger) error {

	// golang-migrate selects its driver from the URL scheme; we always go
	// through the pgx/v5 database driver.
	migrator, err := migrate.New("file://"+sourcePath, toPgx5Scheme(databaseURL))
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Warn("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if dbErr != nil {
			logger.Warn("migration_db_close_failed", slog.Any("error", dbErr))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migrations_up_to_date")
			return nil
		}
		return fmt.Errorf("migration up: %w", err)
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}

	logger.Info("migrations_applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// toPgx5Scheme rewrites a postgres:// or postgresql:// URL to the pgx5://
// scheme the golang-migrate pgx/v5 driver registers under.
func toPgx5Scheme(databaseURL string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}
