// Package sqlite persists reconstruction runs and their point clouds. The
// schema is owned by embedded golang-migrate migrations so deployments can
// upgrade in place.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/railsim-data/depthscan/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB wraps the run database connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the run database at path and applies any
// pending migrations.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}

	db := &DB{conn}
	if err := db.migrateUp(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// migrateUp applies all pending migrations from the embedded sources.
func (db *DB) migrateUp() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Don't close m: that would close the underlying DB connection.
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// migrateLogger adapts the diagnostic logger for golang-migrate.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }
