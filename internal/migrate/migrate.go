package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"bookshop/internal/db"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var migrationsFS embed.FS

// Apply runs all migrations up using the embedded migration files for the
// given driver. It opens and closes its own connection because the migrate
// instance closes the database it was handed.
func Apply(ctx context.Context, driver, dsn string) error {
	dir, err := migrationsDir(driver)
	if err != nil {
		return err
	}
	srcDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("init iofs: %w", err)
	}

	sqlDB, err := db.Open(ctx, driver, dsn)
	if err != nil {
		return fmt.Errorf("open sql db: %w", err)
	}

	dbDriver, err := databaseDriver(sqlDB, driver)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("init db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, driver, dbDriver)
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("migrate up: %w (hint: ensure every migration version has both `.up.sql` and `.down.sql` for %s)", err, driver)
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func migrationsDir(driver string) (string, error) {
	switch driver {
	case db.DriverSQLite:
		return "sql/sqlite", nil
	case db.DriverPostgres:
		return "sql/postgres", nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

func databaseDriver(sqlDB *sql.DB, driver string) (database.Driver, error) {
	if driver == db.DriverPostgres {
		return postgres.WithInstance(sqlDB, &postgres.Config{})
	}
	return sqlite.WithInstance(sqlDB, &sqlite.Config{})
}
