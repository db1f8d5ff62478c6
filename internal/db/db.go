// Package db provides database access for the wiki
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the database connection
type DB struct {
	*sqlx.DB
	path string
}

// DefaultDataDir returns the default data directory
func DefaultDataDir() string {
	// Try project-local first
	if _, err := os.Stat(".wiki"); err == nil {
		return ".wiki"
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wiki"
	}
	return filepath.Join(home, ".wiki")
}

// open opens or creates a sqlite database and runs the given migrations
func open(path string, migrations []string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer per file keeps transactions and the foreign_keys pragma on one connection
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{DB: db, path: path}

	for _, m := range migrations {
		if _, err := d.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	return d, nil
}

// OpenRegistry opens the project catalog
func OpenRegistry(path string) (*DB, error) {
	return open(path, []string{migrationProjects})
}

// OpenProject opens the store of a single project
func OpenProject(path string) (*DB, error) {
	return open(path, []string{
		migrationPages,
		migrationMainPage,
		migrationCells,
		migrationDevlog,
		migrationIndexes,
	})
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// WithTx runs fn inside a transaction, rolling back when fn fails
func (d *DB) WithTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := d.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const migrationProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    created_at REAL NOT NULL,
    updated_at REAL NOT NULL
);
`

const migrationPages = `
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    parent_id INTEGER REFERENCES pages(id) ON DELETE CASCADE,
    path TEXT NOT NULL,
    created_at REAL NOT NULL,
    updated_at REAL NOT NULL
);
`

// migrationMainPage seeds the sentinel page so root cells satisfy the foreign key
const migrationMainPage = `
INSERT OR IGNORE INTO pages (id, title, parent_id, path, created_at, updated_at)
VALUES (0, 'Main', NULL, 'Main', 0, 0);
`

const migrationCells = `
CREATE TABLE IF NOT EXISTS cells (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
    type TEXT NOT NULL CHECK (type IN ('text', 'header', 'subheader', 'table', 'ranking')),
    content TEXT NOT NULL DEFAULT '',
    order_index INTEGER NOT NULL,
    created_at REAL NOT NULL,
    updated_at REAL NOT NULL
);
`

const migrationDevlog = `
CREATE TABLE IF NOT EXISTS devlog (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    subject_id INTEGER NOT NULL DEFAULT 0,
    message TEXT NOT NULL,
    created_at REAL NOT NULL
);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_pages_parent_id ON pages(parent_id);
CREATE INDEX IF NOT EXISTS idx_cells_page_order ON cells(page_id, order_index);
CREATE INDEX IF NOT EXISTS idx_devlog_created_at ON devlog(created_at);
`
