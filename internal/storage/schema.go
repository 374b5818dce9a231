package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createDiagnosticsTable(tx); err != nil {
			return err
		}
		if err := createErrorPatternsTable(tx); err != nil {
			return err
		}
		if err := createScanResultsTable(tx); err != nil {
			return err
		}
		if err := createCodeFrequencyTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("running database migrations", "from_version", version, "to_version", currentSchemaVersion)

	// Migrations run sequentially as the schema evolves.
	return nil
}

func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	if err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

func createSchemaVersionTable(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// createDiagnosticsTable holds every diagnostic ever observed, keyed by its
// identity key. Occurrence counters track recurrence across scans.
func createDiagnosticsTable(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS diagnostics (
		key TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		col INTEGER NOT NULL,
		code TEXT NOT NULL,
		message TEXT NOT NULL,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		occurrences INTEGER NOT NULL DEFAULT 1,
		first_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create diagnostics table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_diagnostics_file ON diagnostics(file)",
		"CREATE INDEX IF NOT EXISTS idx_diagnostics_code ON diagnostics(code)",
		"CREATE INDEX IF NOT EXISTS idx_diagnostics_category ON diagnostics(category)",
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create diagnostics index: %w", err)
		}
	}
	return nil
}

func createErrorPatternsTable(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS error_patterns (
		name TEXT PRIMARY KEY,
		signature TEXT NOT NULL,
		detection_regex TEXT NOT NULL,
		code TEXT NOT NULL,
		category TEXT NOT NULL,
		severity TEXT NOT NULL,
		occurrences INTEGER NOT NULL,
		affected_files TEXT NOT NULL, -- JSON array of file paths
		suggested_fix TEXT,
		auto_fixable INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create error_patterns table: %w", err)
	}
	return nil
}

func createScanResultsTable(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS scan_results (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		total INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		high INTEGER NOT NULL,
		medium INTEGER NOT NULL,
		low INTEGER NOT NULL,
		deep INTEGER NOT NULL DEFAULT 0,
		new_errors INTEGER NOT NULL,
		recurring_errors INTEGER NOT NULL
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create scan_results table: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_scan_results_started ON scan_results(started_at)"); err != nil {
		return fmt.Errorf("failed to create scan_results index: %w", err)
	}
	return nil
}

// createCodeFrequencyTable tracks how often each error code has occurred per
// file. The risk scanner uses it to boost confidence for recurring hotspots.
func createCodeFrequencyTable(tx *sql.Tx) error {
	query := `
	CREATE TABLE IF NOT EXISTS code_frequency (
		file TEXT NOT NULL,
		code TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (file, code)
	)`
	if _, err := tx.Exec(query); err != nil {
		return fmt.Errorf("failed to create code_frequency table: %w", err)
	}
	return nil
}
