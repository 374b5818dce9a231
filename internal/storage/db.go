// Package storage persists diagnostics, patterns, and scan history in a
// SQLite database under the project's .tserr directory.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	tserrors "tserr/internal/errors"
)

// DB represents a database connection with transaction helpers
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

// Open opens or creates the SQLite database at <root>/.tserr/tserr.db.
// If the database doesn't exist, it is created along with all tables.
func Open(rootDir string, logger *slog.Logger) (*DB, error) {
	dataDir := filepath.Join(rootDir, ".tserr")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, tserrors.New(tserrors.StorageUnavailable, "creating .tserr directory", err)
	}

	dbPath := filepath.Join(dataDir, "tserr.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, tserrors.New(tserrors.StorageUnavailable, "opening database", err)
	}

	// Pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",    // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL",  // Balance between safety and performance
		"PRAGMA foreign_keys=ON",     // Enable foreign key constraints
		"PRAGMA busy_timeout=5000",   // Wait up to 5 seconds on lock
		"PRAGMA cache_size=-32000",   // 32MB cache
		"PRAGMA temp_store=MEMORY",   // Use memory for temp tables
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, tserrors.New(tserrors.StorageUnavailable, "setting pragma", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("creating new database", "path", dbPath)
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			return nil, tserrors.New(tserrors.StorageUnavailable, "initializing schema", err)
		}
	} else {
		if err := db.runMigrations(); err != nil {
			conn.Close()
			return nil, tserrors.New(tserrors.StorageUnavailable, "running migrations", err)
		}
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the filesystem path of the database file
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx executes a function within a transaction. If the function returns
// an error, the transaction is rolled back; otherwise it is committed.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
