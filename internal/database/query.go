package database

import (
	"database/sql"
	"time"
)

const selectColumns = `
	SELECT id, run_id, timestamp, action, directory, file_name, object_type,
	       size, reason, error_message
	FROM sweep_history
`

// GetRecent returns the N most recent records
func (d *HistoryDB) GetRecent(limit int) ([]Record, error) {
	return d.queryRecords(selectColumns+`ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// GetByAction returns records filtered by action type
func (d *HistoryDB) GetByAction(action string) ([]Record, error) {
	return d.queryRecords(selectColumns+`WHERE action = ? ORDER BY timestamp DESC, id DESC`, action)
}

// GetByReason returns keep records filtered by reason
func (d *HistoryDB) GetByReason(reason string) ([]Record, error) {
	return d.queryRecords(selectColumns+`WHERE reason = ? ORDER BY timestamp DESC, id DESC`, reason)
}

// GetByRun returns every record of one sweep in insertion order
func (d *HistoryDB) GetByRun(runID string) ([]Record, error) {
	return d.queryRecords(selectColumns+`WHERE run_id = ? ORDER BY id ASC`, runID)
}

// GetLastRunID returns the run id of the most recent sweep, or "" if none
func (d *HistoryDB) GetLastRunID() (string, error) {
	var runID string
	err := d.db.QueryRow(`SELECT run_id FROM sweep_history ORDER BY timestamp DESC, id DESC LIMIT 1`).Scan(&runID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return runID, err
}

// GetCountByAction returns count of records grouped by action
func (d *HistoryDB) GetCountByAction() (map[string]int, error) {
	return d.countBy(`SELECT action, COUNT(*) FROM sweep_history GROUP BY action`)
}

// GetCountByReason returns count of keep records grouped by reason
func (d *HistoryDB) GetCountByReason() (map[string]int, error) {
	return d.countBy(`SELECT reason, COUNT(*) FROM sweep_history WHERE reason IS NOT NULL GROUP BY reason`)
}

func (d *HistoryDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// GetTotalSpaceFreed returns total bytes deleted in a time range
func (d *HistoryDB) GetTotalSpaceFreed(start, end time.Time) (int64, error) {
	query := `
	SELECT COALESCE(SUM(size), 0)
	FROM sweep_history
	WHERE action = 'DELETE' AND timestamp BETWEEN ? AND ?
	`

	var total int64
	err := d.db.QueryRow(query, start, end).Scan(&total)
	return total, err
}

// Stats holds aggregated statistics
type Stats struct {
	TotalRuns       int
	TotalDeleted    int
	TotalKept       int
	TotalErrors     int
	TotalSpaceFreed int64
	ByReason        map[string]int
	StartDate       time.Time
	EndDate         time.Time
}

// GetStats returns statistics for the last days
func (d *HistoryDB) GetStats(days int) (*Stats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &Stats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(DISTINCT run_id),
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'KEEP' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM sweep_history
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRuns, &stats.TotalDeleted, &stats.TotalKept, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.TotalSpaceFreed, err = d.GetTotalSpaceFreed(since, now)
	if err != nil {
		return nil, err
	}

	stats.ByReason, err = d.countBy(`
		SELECT reason, COUNT(*) FROM sweep_history
		WHERE reason IS NOT NULL AND timestamp >= ?
		GROUP BY reason
	`, since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes records older than specified days
func (d *HistoryDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM sweep_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (d *HistoryDB) queryRecords(query string, args ...interface{}) ([]Record, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var reason, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.Directory,
			&r.FileName, &r.ObjectType, &r.Size, &reason, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.Reason = reason.String
		r.ErrorMessage = errMsg.String
		records = append(records, r)
	}

	return records, rows.Err()
}
