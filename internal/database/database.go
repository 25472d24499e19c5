// LibraAI - Library Management and Recommendation Platform
// Copyright 2026 Sean W. (seannywoot)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/seannywoot/libraai

// Package database provides DuckDB-backed persistence for the catalog and the
// behavioral records the recommendation engine reads.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/seannywoot/libraai/internal/config"
	"github.com/seannywoot/libraai/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, threads, cfg.MaxMemory)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", threads).Msg("database ready")
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates all tables and indexes. Category and tag lists are stored
// comma-separated; readers split them with splitList and writers join them
// with joinList so the two stay symmetric.
func (db *DB) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id VARCHAR PRIMARY KEY,
			isbn VARCHAR,
			title VARCHAR NOT NULL,
			author VARCHAR,
			publisher VARCHAR,
			format VARCHAR,
			year INTEGER,
			categories VARCHAR,
			tags VARCHAR,
			popularity_score DOUBLE DEFAULT 0,
			status VARCHAR DEFAULT 'available'
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id VARCHAR NOT NULL,
			event VARCHAR NOT NULL,
			book_id VARCHAR,
			categories VARCHAR,
			tags VARCHAR,
			author VARCHAR,
			publisher VARCHAR,
			format VARCHAR,
			year INTEGER,
			query VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			user_id VARCHAR NOT NULL,
			book_id VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			categories VARCHAR,
			tags VARCHAR,
			author VARCHAR,
			publisher VARCHAR,
			format VARCHAR,
			year INTEGER,
			borrowed_at TIMESTAMP NOT NULL,
			returned_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			user_id VARCHAR NOT NULL,
			book_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			user_id VARCHAR NOT NULL,
			book_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_library (
			user_id VARCHAR NOT NULL,
			isbn VARCHAR,
			title VARCHAR NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_user_time ON interactions (user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_user ON loans (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_book ON loans (book_id)`,
		`CREATE INDEX IF NOT EXISTS idx_books_status ON books (status)`,
	}
	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// splitList parses a comma-separated list column.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// joinList renders a list for a comma-separated column.
func joinList(vals []string) string {
	return strings.Join(vals, ",")
}

// placeholders returns n comma-joined SQL placeholders.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
