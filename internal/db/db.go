package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour a DB speaks.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DB wraps *sql.DB with the dialect needed to pick queries.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects, pings and migrates the user store for the given driver.
// For sqlite, dsn is a file path or ":memory:".
func Open(ctx context.Context, driver string, dsn string) (*DB, error) {
	var (
		sqlDB   *sql.DB
		dialect Dialect
		err     error
	)

	switch Dialect(driver) {
	case Postgres:
		dialect = Postgres
		sqlDB, err = sql.Open("postgres", dsn)
	case SQLite:
		dialect = SQLite
		sqlDB, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			// one writer keeps sqlite away from SQLITE_BUSY
			sqlDB.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", driver, err)
	}

	d := &DB{DB: sqlDB, Dialect: dialect}
	if err := d.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	return d, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
