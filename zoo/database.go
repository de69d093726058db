package zoo

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the persistence boundary the registries write to and read from.
type Store interface {
	// Exec runs a statement that returns no rows.
	Exec(query string, args ...any) error
	// Query runs a statement and returns its rows. Callers close them.
	Query(query string, args ...any) (*sql.Rows, error)
}

// Database provides the Store capability on top of a SQLite connection.
type Database struct {
	db *sql.DB
}

var _ Store = (*Database)(nil)

// NewDatabase opens (or creates) the SQLite database at dbPath and ensures
// the Animals, Exhibits and CareRecords tables exist.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

// WrapDB adapts an already opened handle. The schema is not touched.
func WrapDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the DB.
func (d *Database) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func applySchema(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Animals (
            id INTEGER PRIMARY KEY,
            name TEXT,
            species TEXT,
            age INTEGER,
            exhibit TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS Exhibits (
            name TEXT PRIMARY KEY,
            type TEXT,
            capacity INTEGER
        );`,
		`CREATE TABLE IF NOT EXISTS CareRecords (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            animal_id INTEGER,
            type TEXT CHECK(type IN ('feeding','health')),
            details TEXT,
            timestamp TEXT
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

func (d *Database) Exec(query string, args ...any) error {
	_, err := d.db.Exec(query, args...)
	return err
}

func (d *Database) Query(query string, args ...any) (*sql.Rows, error) {
	return d.db.Query(query, args...)
}
