// Package store provides persistence for attachments and plugin options.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"                      // SQLite driver
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql driver

	"github.com/drawit-cms/drawit-go/config"
)

// Database wraps the service database connection.
type Database struct {
	Conn      *sql.DB
	UseLibSQL bool
}

// NewDatabase opens the service database. Remote libsql is preferred when
// credentials are configured; otherwise a local SQLite file is used.
func NewDatabase(cfg *config.Config) (*Database, error) {
	var conn *sql.DB
	var err error
	var useLibSQL bool

	if cfg.LibSQLURL != "" && cfg.LibSQLToken != "" {
		connStr := cfg.LibSQLURL + "?authToken=" + cfg.LibSQLToken
		conn, err = sql.Open("libsql", connStr)
		if err == nil {
			if pingErr := conn.Ping(); pingErr == nil {
				useLibSQL = true
			} else {
				conn.Close()
				conn = nil
			}
		}
	}

	if conn == nil {
		dbDir := filepath.Dir(cfg.DatabasePath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		conn, err = sql.Open("sqlite3", cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}

		if err := conn.Ping(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("SQLite database ping failed: %w", err)
		}
		useLibSQL = false
	}

	db := &Database{Conn: conn, UseLibSQL: useLibSQL}
	if err := db.ensureSchema(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *Database) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attachments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id INTEGER NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			filename TEXT NOT NULL,
			file_path TEXT NOT NULL,
			url TEXT NOT NULL,
			mime_type TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			sizes TEXT NOT NULL DEFAULT '[]',
			is_diagram INTEGER NOT NULL DEFAULT 0,
			diagram_xml TEXT NOT NULL DEFAULT '',
			diagram_title TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_post_id ON attachments(post_id)`,
		`CREATE TABLE IF NOT EXISTS options (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema creation failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (db *Database) Close() error {
	if db.Conn != nil {
		return db.Conn.Close()
	}
	return nil
}

// GetConnectionInfo returns a string describing the active backend.
func (db *Database) GetConnectionInfo() string {
	if db.UseLibSQL {
		return "libsql"
	}
	return "sqlite3"
}
