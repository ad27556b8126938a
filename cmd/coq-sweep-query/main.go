package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"coq-sweep/internal/database"
	"coq-sweep/internal/exitcodes"
	"coq-sweep/internal/scan"
)

func main() {
	dbPath := flag.String("db", "coq-sweep.db", "Path to sweep history database")
	recent := flag.Int("recent", 0, "Show N most recent records")
	stats := flag.Bool("stats", false, "Show sweep statistics")
	action := flag.String("action", "", "Filter by action (DELETE, KEEP, ERROR)")
	reason := flag.String("reason", "", "Filter by keep reason")
	run := flag.String("run", "", "Show one sweep by run id, or \"last\"")
	days := flag.Int("days", 30, "Number of days for statistics")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	prune := flag.Int("prune", 0, "Delete records older than N days")
	vacuum := flag.Bool("vacuum", false, "Reclaim unused space in the database")
	dbStats := flag.Bool("db-stats", false, "Show size and row counts of the database")
	flag.Parse()

	logger := logrus.New()

	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		logger.WithError(err).WithField("path", *dbPath).Fatal("failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("failed to close database")
		}
	}()

	q := &query{db: db, out: os.Stdout, json: *jsonOutput}

	switch {
	case *prune > 0:
		err = q.pruneOlderThan(*prune)
		if err == nil && *vacuum {
			err = q.vacuum()
		}
	case *vacuum:
		err = q.vacuum()
	case *dbStats:
		err = q.showDatabaseStats()
	case *stats:
		err = q.showStats(*days)
	case *recent > 0:
		err = q.showRecent(*recent)
	case *run != "":
		err = q.showRun(*run)
	case *action != "":
		err = q.showByAction(*action)
	case *reason != "":
		err = q.showByReason(*reason)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  coq-sweep-query -recent 10              # Show 10 most recent records")
		fmt.Println("  coq-sweep-query -stats                  # Show sweep statistics")
		fmt.Println("  coq-sweep-query -run last               # Show every decision of the last sweep")
		fmt.Println("  coq-sweep-query -action ERROR           # Show failed deletions")
		fmt.Println("  coq-sweep-query -reason not_regular     # Show entries kept as non-regular")
		fmt.Println("  coq-sweep-query -prune 90 -vacuum       # Drop records older than 90 days")
		db.Close()
		os.Exit(exitcodes.InvalidConfig)
	}

	if err != nil {
		logger.WithError(err).Error("query failed")
		db.Close()
		os.Exit(exitcodes.RuntimeError)
	}
}

type query struct {
	db   *database.HistoryDB
	out  io.Writer
	json bool
}

func (q *query) writeJSON(v interface{}) error {
	enc := json.NewEncoder(q.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (q *query) showStats(days int) error {
	stats, err := q.db.GetStats(days)
	if err != nil {
		return fmt.Errorf("get statistics: %w", err)
	}

	if q.json {
		return q.writeJSON(stats)
	}

	fmt.Fprintf(q.out, "Sweep Statistics (Last %d days)\n", days)
	fmt.Fprintf(q.out, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(q.out, "Sweeps:        %s\n", humanize.Comma(int64(stats.TotalRuns)))
	fmt.Fprintf(q.out, "Deleted:       %s\n", humanize.Comma(int64(stats.TotalDeleted)))
	fmt.Fprintf(q.out, "Kept:          %s\n", humanize.Comma(int64(stats.TotalKept)))
	fmt.Fprintf(q.out, "Errors:        %s\n", humanize.Comma(int64(stats.TotalErrors)))
	fmt.Fprintf(q.out, "Space Freed:   %s\n", humanize.IBytes(uint64(stats.TotalSpaceFreed)))

	if len(stats.ByReason) > 0 {
		fmt.Fprintln(q.out, "\nKept By Reason:")
		reasons := make([]string, 0, len(stats.ByReason))
		for r := range stats.ByReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			fmt.Fprintf(q.out, "  %-18s %d  (%s)\n", r, stats.ByReason[r], scan.KeepReason(r).ToHumanReadable())
		}
	}
	return nil
}

func (q *query) showDatabaseStats() error {
	stats, err := q.db.GetDatabaseStats()
	if err != nil {
		return fmt.Errorf("get database statistics: %w", err)
	}

	if q.json {
		return q.writeJSON(stats)
	}

	fmt.Fprintf(q.out, "Records:  %s\n", humanize.Comma(stats.TotalRecords))
	fmt.Fprintf(q.out, "Sweeps:   %s\n", humanize.Comma(stats.TotalRuns))
	fmt.Fprintf(q.out, "Size:     %s\n", humanize.IBytes(uint64(stats.SizeBytes)))
	return nil
}

func (q *query) pruneOlderThan(days int) error {
	removed, err := q.db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("prune records: %w", err)
	}
	if q.json {
		return q.writeJSON(map[string]int64{"removed": removed})
	}
	fmt.Fprintf(q.out, "Removed %s records older than %d days\n", humanize.Comma(removed), days)
	return nil
}

func (q *query) vacuum() error {
	if err := q.db.Vacuum(); err != nil {
		return fmt.Errorf("vacuum database: %w", err)
	}
	if !q.json {
		fmt.Fprintln(q.out, "Database vacuumed")
	}
	return nil
}

func (q *query) showRecent(limit int) error {
	records, err := q.db.GetRecent(limit)
	if err != nil {
		return fmt.Errorf("get recent records: %w", err)
	}
	return q.print(records)
}

func (q *query) showRun(runID string) error {
	if runID == "last" {
		last, err := q.db.GetLastRunID()
		if err != nil {
			return fmt.Errorf("find last run: %w", err)
		}
		runID = last
	}
	records, err := q.db.GetByRun(runID)
	if err != nil {
		return fmt.Errorf("query run %s: %w", runID, err)
	}
	if !q.json {
		fmt.Fprintf(q.out, "Sweep %s\n\n", runID)
	}
	return q.print(records)
}

func (q *query) showByAction(action string) error {
	records, err := q.db.GetByAction(action)
	if err != nil {
		return fmt.Errorf("query by action: %w", err)
	}
	if !q.json {
		fmt.Fprintf(q.out, "Records with action: %s\n\n", action)
	}
	return q.print(records)
}

func (q *query) showByReason(reason string) error {
	records, err := q.db.GetByReason(reason)
	if err != nil {
		return fmt.Errorf("query by reason: %w", err)
	}
	if !q.json {
		fmt.Fprintf(q.out, "Records kept for: %s\n\n", scan.KeepReason(reason).ToHumanReadable())
	}
	return q.print(records)
}

func (q *query) print(records []database.Record) error {
	if q.json {
		return q.writeJSON(records)
	}
	printRecords(q.out, records)
	return nil
}

func printRecords(out io.Writer, records []database.Record) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No records found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tWhen\tAction\tReason\tSize\tPath\tError")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t------\t----\t----\t-----")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			humanize.Time(r.Timestamp),
			r.Action,
			r.Reason,
			humanize.IBytes(uint64(r.Size)),
			r.Directory+"/"+r.FileName,
			r.ErrorMessage,
		)
	}
	_ = w.Flush()
}
