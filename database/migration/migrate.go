// Package migration applies versioned SQL migrations from an fs.FS to a
// SQLite database using golang-migrate.
//
// Migration files follow the pattern VERSION_name.up.sql and
// VERSION_name.down.sql:
//
//	//go:embed migrations/*.sql
//	var migrationsFS embed.FS
//
//	err := migration.Up(db.SQL, migrationsFS, "migrations")
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Up runs all pending migrations. migrate.ErrNoChange is suppressed.
func Up(db *sql.DB, fsys fs.FS, path string) error {
	m, err := newMigrator(db, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back all migrations. migrate.ErrNoChange is suppressed.
func Down(db *sql.DB, fsys fs.FS, path string) error {
	m, err := newMigrator(db, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps runs n migrations (positive = up, negative = down).
func Steps(db *sql.DB, fsys fs.FS, path string, n int) error {
	m, err := newMigrator(db, fsys, path)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	return nil
}

// Version returns the current migration version and dirty flag. A database
// with no migrations applied reports version 0.
func Version(db *sql.DB, fsys fs.FS, path string) (uint, bool, error) {
	m, err := newMigrator(db, fsys, path)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// newMigrator creates a migrator over the shared pool. Callers must not call
// m.Close(): it would close db.
func newMigrator(db *sql.DB, fsys fs.FS, path string) (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}

	source, err := iofs.New(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
