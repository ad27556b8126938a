package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"coq-sweep/internal/scan"
)

// HistoryDB manages the SQLite database for sweep history
type HistoryDB struct {
	db *sql.DB
}

// Record represents a single decision taken during a sweep
type Record struct {
	ID           int64
	RunID        string
	Timestamp    time.Time
	Action       string // DELETE, KEEP or ERROR
	Directory    string
	FileName     string
	ObjectType   string
	Size         int64
	Reason       string
	ErrorMessage string
}

// NewHistoryDB creates a new database connection and initializes schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Ping does not create the file; a real statement does
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return hdb, nil
}

func (d *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sweep_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		directory TEXT NOT NULL,
		file_name TEXT NOT NULL,
		object_type TEXT NOT NULL,
		size INTEGER NOT NULL,
		reason TEXT,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_run_id ON sweep_history(run_id);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON sweep_history(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON sweep_history(action);
	CREATE INDEX IF NOT EXISTS idx_reason ON sweep_history(reason);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordDecision inserts one sweep decision. errorMsg is only set for ERROR rows.
func (d *HistoryDB) RecordDecision(runID, directory string, decision scan.Decision, errorMsg string, at time.Time) error {
	action := string(decision.Action)
	if errorMsg != "" {
		action = string(scan.ActionError)
	}

	var reason, errMsg sql.NullString
	if decision.Reason != scan.ReasonNone {
		reason = sql.NullString{String: string(decision.Reason), Valid: true}
	}
	if errorMsg != "" {
		errMsg = sql.NullString{String: errorMsg, Valid: true}
	}

	query := `
	INSERT INTO sweep_history (
		run_id, timestamp, action, directory, file_name, object_type, size,
		reason, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		runID,
		at,
		action,
		directory,
		decision.Entry.Name,
		string(decision.Entry.Kind),
		decision.Entry.Size,
		reason,
		errMsg,
	)
	return err
}

// Close closes the database connection
func (d *HistoryDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *HistoryDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}

// DatabaseStats describes the history database itself
type DatabaseStats struct {
	TotalRecords int64
	TotalRuns    int64
	SizeBytes    int64
}

// GetDatabaseStats returns database statistics
func (d *HistoryDB) GetDatabaseStats() (*DatabaseStats, error) {
	stats := &DatabaseStats{}

	err := d.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT run_id) FROM sweep_history").
		Scan(&stats.TotalRecords, &stats.TotalRuns)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	if err := d.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	stats.SizeBytes = pageCount * pageSize

	return stats, nil
}
