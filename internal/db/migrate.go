package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/gratefultolord/hr_requests_bot/internal/config"
)

//go:embed migrations/sqlite3/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending migration for the connection's dialect.
// Already being up to date is not an error.
func RunMigrations(db *DB) error {
	source, err := iofs.New(migrationsFS, "migrations/"+db.Driver)
	if err != nil {
		return fmt.Errorf("db.RunMigrations: cannot create migration source: %w", err)
	}

	var driver database.Driver
	switch db.Driver {
	case config.DriverPostgres:
		driver, err = migratepg.WithInstance(db.Conn.DB, &migratepg.Config{})
	case config.DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.Conn.DB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.Driver)
	}
	if err != nil {
		return fmt.Errorf("db.RunMigrations: cannot create migration driver: %w", err)
	}

	// The migrator is not closed: closing it would close the shared connection.
	m, err := migrate.NewWithInstance("iofs", source, db.Driver, driver)
	if err != nil {
		return fmt.Errorf("db.RunMigrations: cannot create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("db.RunMigrations: %w", err)
	}

	return nil
}
