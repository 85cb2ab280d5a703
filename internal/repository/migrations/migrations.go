package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitedb "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed postgres/*.sql
var postgresFS embed.FS

//go:embed sqlite/*.sql
var sqliteFS embed.FS

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Up applies all pending migrations for driver
func Up(db *sql.DB, driver string, logger *zap.Logger) error {
	var (
		dbDriver database.Driver
		files    fs.FS
		dir      string
		err      error
	)

	switch driver {
	case DriverPostgres:
		dbDriver, err = postgresdb.WithInstance(db, &postgresdb.Config{})
		files, dir = postgresFS, "postgres"
	case DriverSQLite:
		dbDriver, err = sqlitedb.WithInstance(db, &sqlitedb.Config{})
		files, dir = sqliteFS, "sqlite"
	default:
		return fmt.Errorf("unknown db driver %q: only %q and %q are supported", driver, DriverPostgres, DriverSQLite)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply", zap.String("driver", driver))
	} else {
		logger.Info("Migrations applied successfully", zap.String("driver", driver))
	}

	return nil
}
