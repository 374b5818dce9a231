package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tserr/internal/diagnostic"
	"tserr/internal/pattern"
	"tserr/internal/scan"
)

// KnownKeys returns the identity keys of every diagnostic on record.
func (db *DB) KnownKeys() (map[string]struct{}, error) {
	rows, err := db.conn.Query("SELECT key FROM diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to query known keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys[key] = struct{}{}
	}
	return keys, rows.Err()
}

// CodeFrequency returns per-code historical occurrence counts for a file.
// Errors degrade to an empty map; the risk scanner treats missing history
// as no boost.
func (db *DB) CodeFrequency(file string) map[string]int {
	rows, err := db.conn.Query("SELECT code, count FROM code_frequency WHERE file = ?", file)
	if err != nil {
		db.logger.Warn("code frequency lookup failed", "file", file, "error", err)
		return nil
	}
	defer rows.Close()

	freq := make(map[string]int)
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			db.logger.Warn("code frequency scan failed", "error", err)
			return freq
		}
		freq[code] = count
	}
	return freq
}

// RecordDiagnostics upserts new diagnostics and bumps occurrence counters
// for recurring ones. Both slices may be empty.
func (db *DB) RecordDiagnostics(newDiags, recurring []*diagnostic.Diagnostic) error {
	if len(newDiags) == 0 && len(recurring) == 0 {
		return nil
	}

	return db.WithTx(func(tx *sql.Tx) error {
		upsert, err := tx.Prepare(`
			INSERT INTO diagnostics (key, file, line, col, code, message, category, severity)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				message = excluded.message,
				category = excluded.category,
				severity = excluded.severity,
				occurrences = occurrences + 1,
				last_seen = CURRENT_TIMESTAMP`)
		if err != nil {
			return fmt.Errorf("failed to prepare diagnostic upsert: %w", err)
		}
		defer upsert.Close()

		bumpFreq, err := tx.Prepare(`
			INSERT INTO code_frequency (file, code, count) VALUES (?, ?, 1)
			ON CONFLICT(file, code) DO UPDATE SET count = count + 1`)
		if err != nil {
			return fmt.Errorf("failed to prepare frequency bump: %w", err)
		}
		defer bumpFreq.Close()

		for _, d := range newDiags {
			if _, err := upsert.Exec(d.Key(), d.File, d.Line, d.Column, d.Code, d.Message, string(d.Category), string(d.Severity)); err != nil {
				return fmt.Errorf("failed to record diagnostic %s: %w", d.Key(), err)
			}
			if _, err := bumpFreq.Exec(d.File, d.Code); err != nil {
				return fmt.Errorf("failed to bump code frequency: %w", err)
			}
		}

		bump, err := tx.Prepare(`
			UPDATE diagnostics SET occurrences = occurrences + 1, last_seen = CURRENT_TIMESTAMP
			WHERE key = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare occurrence bump: %w", err)
		}
		defer bump.Close()

		for _, d := range recurring {
			if _, err := bump.Exec(d.Key()); err != nil {
				return fmt.Errorf("failed to bump diagnostic %s: %w", d.Key(), err)
			}
			if _, err := bumpFreq.Exec(d.File, d.Code); err != nil {
				return fmt.Errorf("failed to bump code frequency: %w", err)
			}
		}
		return nil
	})
}

// RecordPatterns upserts the run's discovered patterns by name.
func (db *DB) RecordPatterns(patterns []*pattern.ErrorPattern) error {
	if len(patterns) == 0 {
		return nil
	}

	return db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO error_patterns
				(name, signature, detection_regex, code, category, severity, occurrences, affected_files, suggested_fix, auto_fixable)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				occurrences = excluded.occurrences,
				affected_files = excluded.affected_files,
				suggested_fix = excluded.suggested_fix,
				auto_fixable = excluded.auto_fixable,
				updated_at = CURRENT_TIMESTAMP`)
		if err != nil {
			return fmt.Errorf("failed to prepare pattern upsert: %w", err)
		}
		defer stmt.Close()

		for _, p := range patterns {
			autoFixable := 0
			if p.AutoFixable {
				autoFixable = 1
			}
			files, err := json.Marshal(p.AffectedFiles)
			if err != nil {
				return fmt.Errorf("failed to encode affected files for %s: %w", p.Name, err)
			}
			if _, err := stmt.Exec(p.Name, p.Signature, p.DetectionRegex, p.Code,
				string(p.Category), string(p.Severity), p.Occurrences, string(files),
				p.SuggestedFix, autoFixable); err != nil {
				return fmt.Errorf("failed to record pattern %s: %w", p.Name, err)
			}
		}
		return nil
	})
}

// RecordScan stores one scan's aggregate result row.
func (db *DB) RecordScan(result scan.Result) error {
	deep := 0
	if result.Deep {
		deep = 1
	}
	_, err := db.conn.Exec(`
		INSERT INTO scan_results
			(id, started_at, duration_ms, total, critical, high, medium, low, deep, new_errors, recurring_errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.StartedAt.UTC().Format(time.RFC3339Nano), result.Duration.Milliseconds(),
		result.Total, result.Critical, result.High, result.Medium, result.Low,
		deep, result.New, result.Recurring)
	if err != nil {
		return fmt.Errorf("failed to record scan result: %w", err)
	}
	return nil
}

// History returns the most recent scan results, newest first.
func (db *DB) History(limit int) ([]scan.Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, duration_ms, total, critical, high, medium, low, deep, new_errors, recurring_errors
		FROM scan_results ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var results []scan.Result
	for rows.Next() {
		var r scan.Result
		var startedAt string
		var durationMs int64
		var deep int
		if err := rows.Scan(&r.ID, &startedAt, &durationMs, &r.Total, &r.Critical,
			&r.High, &r.Medium, &r.Low, &deep, &r.New, &r.Recurring); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Deep = deep != 0
		results = append(results, r)
	}
	return results, rows.Err()
}

// Patterns returns all stored patterns ordered by occurrence count.
func (db *DB) Patterns() ([]*pattern.ErrorPattern, error) {
	rows, err := db.conn.Query(`
		SELECT name, signature, detection_regex, code, category, severity, occurrences, affected_files, suggested_fix, auto_fixable
		FROM error_patterns ORDER BY occurrences DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer rows.Close()

	var patterns []*pattern.ErrorPattern
	for rows.Next() {
		var p pattern.ErrorPattern
		var category, severity, files string
		var autoFixable int
		if err := rows.Scan(&p.Name, &p.Signature, &p.DetectionRegex, &p.Code,
			&category, &severity, &p.Occurrences, &files,
			&p.SuggestedFix, &autoFixable); err != nil {
			return nil, fmt.Errorf("failed to scan pattern row: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &p.AffectedFiles); err != nil {
			return nil, fmt.Errorf("failed to decode affected files for %s: %w", p.Name, err)
		}
		p.Category = diagnostic.Category(category)
		p.Severity = diagnostic.Severity(severity)
		p.AutoFixable = autoFixable != 0
		patterns = append(patterns, &p)
	}
	return patterns, rows.Err()
}

// PruneScans deletes scan results older than the retention window and
// returns the number of rows removed.
func (db *DB) PruneScans(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().Format(time.RFC3339Nano)
	res, err := db.conn.Exec("DELETE FROM scan_results WHERE started_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scan results: %w", err)
	}
	return res.RowsAffected()
}
