package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mwantia/imagestore/data"
	"github.com/mwantia/imagestore/driver"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const DefaultTable = "imagestore_images"

// Config contains configuration options for the SQLite driver
type Config struct {
	// Path to the database file, or ":memory:" for an in-memory database
	// (default: "imagestore.db")
	Path string

	// Table name for image records (default: "imagestore_images")
	Table string
}

// SQLiteDriver persists image records in a single SQLite table. Metadata is
// stored as a JSON column and filtered with json_extract; the identifier
// carries a UNIQUE constraint so duplicate inserts are rejected by the store
// itself, not by a racy existence check.
type SQLiteDriver struct {
	db    *sql.DB
	table string
}

// NewSQLiteDriver creates a new SQLite-backed image driver.
func NewSQLiteDriver(config *Config) (*SQLiteDriver, error) {
	if config == nil {
		config = &Config{}
	}

	// Set defaults
	if config.Path == "" {
		config.Path = "imagestore.db"
	}
	if config.Table == "" {
		config.Table = DefaultTable
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, data.StoreUnavailable(err)
	}

	// Every pooled connection would get its own private in-memory database
	if config.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, data.StoreUnavailable(err)
	}

	sd := &SQLiteDriver{
		db:    db,
		table: config.Table,
	}

	if err := sd.initSchema(); err != nil {
		db.Close()
		return nil, data.StoreUnavailable(err)
	}

	return sd, nil
}

// initSchema creates the database schema.
func (sd *SQLiteDriver) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		mime TEXT NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		created INTEGER NOT NULL,
		metadata TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_created ON %[1]s(created);
	`, sd.table)

	_, err := sd.db.Exec(schema)
	return err
}

// Returns the identifier name defined for this driver
func (*SQLiteDriver) Name() string {
	return "sqlite"
}

// Open is part of the lifecycle behaviour and gets called when opening this driver.
func (sd *SQLiteDriver) Open(ctx context.Context) error {
	if err := sd.db.PingContext(ctx); err != nil {
		return data.StoreUnavailable(err)
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this driver.
func (sd *SQLiteDriver) Close(ctx context.Context) error {
	return sd.db.Close()
}

// Capabilities returns the set of capabilities supported by this driver.
func (sd *SQLiteDriver) Capabilities() *driver.Capabilities {
	return driver.AllCapabilities()
}

// classify translates SQLite faults into the driver error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return data.ErrImageNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return data.ErrImageExists
	}

	return data.StoreUnavailable(err)
}
