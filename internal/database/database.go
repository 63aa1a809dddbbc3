package database

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers. SQLite is the default for a single-user install;
// PostgreSQL is used when the tracker runs as a shared service.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

func Connect(cfg Config) (*sql.DB, error) {
	if err := validateDriver(cfg.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	default:
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 25
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(5)
	}

	return db, nil
}

func validateDriver(driver string) error {
	switch driver {
	case DriverSQLite, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unknown database driver %q: only %q and %q are supported", driver, DriverPostgres, DriverSQLite)
	}
}

var placeholder = regexp.MustCompile(`\$\d+`)

// Rebind rewrites $1-style placeholders into ? for SQLite. Positional ?
// cannot express reuse, so every query, whatever the driver, must number
// its placeholders $1, $2, ... once each and in order. Queries are
// constants; a violation panics.
func Rebind(driver, query string) string {
	for i, p := range placeholder.FindAllString(query, -1) {
		if want := "$" + strconv.Itoa(i+1); p != want {
			panic(fmt.Sprintf("database: placeholder %s at position %d, want %s: %s", p, i+1, want, query))
		}
	}
	if driver != DriverSQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}
