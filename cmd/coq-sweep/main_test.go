package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coq-sweep/internal/database"
	"coq-sweep/internal/exitcodes"
)

func TestRunSweepsDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"README.md", "Proof.v", "Proof.vo", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}

	assert.Equal(t, exitcodes.Success, run("", dir, false))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	assert.ElementsMatch(t, []string{"README.md", "Proof.v"}, left)
}

func TestRunWithConfigAndHistory(t *testing.T) {
	dir := t.TempDir()
	state := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk"), nil, 0o644))

	cfgPath := filepath.Join(state, "config.yaml")
	body := "database_path: " + filepath.Join(state, "history.db") + "\n" +
		"logging:\n  level: warn\n  file: " + filepath.Join(state, "sweep.log") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	assert.Equal(t, exitcodes.Success, run(cfgPath, dir, true))

	_, err := os.Stat(filepath.Join(state, "history.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "junk"))
	assert.True(t, os.IsNotExist(err))
}

// TestRunStateInsideSweptDirectory keeps config, history, logs and metrics
// that live in the directory being swept
func TestRunStateInsideSweptDirectory(t *testing.T) {
	dir := t.TempDir()
	rotated := "sweep.log." + time.Now().Add(-time.Hour).Format("20060102-150405")
	for _, n := range []string{"Proof.v", "junk.o", rotated, "coq_sweep.prom"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}

	cfgPath := filepath.Join(dir, "coq-sweep.yaml")
	body := "database_path: " + filepath.Join(dir, "history.db") + "\n" +
		"metrics:\n  textfile_path: " + filepath.Join(dir, "coq_sweep.prom") + "\n" +
		"logging:\n  level: debug\n  file: " + filepath.Join(dir, "sweep.log") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	assert.Equal(t, exitcodes.Success, run(cfgPath, dir, false))

	for _, n := range []string{"Proof.v", "coq-sweep.yaml", "history.db", "sweep.log", rotated, "coq_sweep.prom"} {
		_, err := os.Stat(filepath.Join(dir, n))
		assert.NoError(t, err, "%s should survive the sweep", n)
	}
	_, err := os.Stat(filepath.Join(dir, "junk.o"))
	assert.True(t, os.IsNotExist(err))

	db, err := database.NewHistoryDB(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer db.Close()

	runID, err := db.GetLastRunID()
	require.NoError(t, err)
	records, err := db.GetByRun(runID)
	require.NoError(t, err)
	assert.NotEmpty(t, records)

	var deleted []string
	for _, r := range records {
		if r.Action == "DELETE" {
			deleted = append(deleted, r.FileName)
		}
	}
	assert.Equal(t, []string{"junk.o"}, deleted)
}

func TestRunInvalidConfig(t *testing.T) {
	assert.Equal(t, exitcodes.InvalidConfig, run(filepath.Join(t.TempDir(), "absent.yaml"), t.TempDir(), false))
}

func TestRunMissingDirectory(t *testing.T) {
	assert.Equal(t, exitcodes.DirectoryUnreadable, run("", filepath.Join(t.TempDir(), "absent"), false))
}

func TestSelfNameOutsideSweptDirectory(t *testing.T) {
	logger, _ := test.NewNullLogger()
	// The test binary lives in a build cache directory, never in a fresh temp dir
	assert.Empty(t, selfName(t.TempDir(), logger))
}

func TestSelfNameInsideSweptDirectory(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	assert.Equal(t, []string{filepath.Base(exe)}, selfName(filepath.Dir(exe), logger))
}
