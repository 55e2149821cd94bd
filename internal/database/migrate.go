package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationResult reports the schema state after Migrate.
type MigrationResult struct {
	// Version is the applied migration version; zero when none are applied.
	Version uint
	// Changed is true when Migrate applied at least one migration.
	Changed bool
}

// Migrate applies every pending up migration embedded in the binary. A dirty
// schema is reported as an error and left for manual repair.
func Migrate(databaseURL string, log *slog.Logger) (MigrationResult, error) {
	var res MigrationResult

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return res, fmt.Errorf("database: failed to open database for migrations: %w", err)
	}
	defer func() { _ = db.Close() }()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return res, fmt.Errorf("database: failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return res, fmt.Errorf("database: failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return res, fmt.Errorf("database: failed to create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return res, fmt.Errorf("database: failed to apply migrations: %w", upErr)
	}
	res.Changed = upErr == nil

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("migrations: no migrations applied")
		return res, nil
	case err != nil:
		return res, fmt.Errorf("database: failed to read migration version: %w", err)
	case dirty:
		return res, fmt.Errorf("database: migration version %d is dirty, manual intervention required", version)
	}

	res.Version = version
	if res.Changed {
		log.Info("migrations: applied", slog.Uint64("version", uint64(version)))
	} else {
		log.Info("migrations: up to date", slog.Uint64("version", uint64(version)))
	}
	return res, nil
}
