package data

import (
	"embed"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// NewDB creates a new connection pool for a SQL backend ("mysql" or "sqlite3").
func NewDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "mysql":
		mcfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// Timestamps are scanned into time.Time and migrations hold several statements.
		mcfg.ParseTime = true
		mcfg.MultiStatements = true
		dsn = mcfg.FormatDSN()
	case "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	// sqlx.Connect opens a connection and pings it to verify it's alive.
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ApplyMigrations runs all embedded up migrations for the given driver.
func ApplyMigrations(db *sqlx.DB, driver string) error {
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to open migrations for %s: %w", driver, err)
	}

	var target database.Driver
	switch driver {
	case "mysql":
		target, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case "sqlite3":
		target, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported sql driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Up applies all available up migrations.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
