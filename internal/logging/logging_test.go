package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coq-sweep/internal/config"
)

func TestNewWithConfigWritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "sweep.log")

	logger, closer, err := NewWithConfig(&config.LoggingCfg{Level: "debug", File: logPath, RotationDays: 30})
	require.NoError(t, err)

	logger.WithField("name", "notes.txt").Info("deleted")
	require.NoError(t, closer.Close())

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name=notes.txt")
	assert.Contains(t, string(data), "deleted")
}

func TestNewWithConfigBadLevel(t *testing.T) {
	_, _, err := NewWithConfig(&config.LoggingCfg{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewWithoutConfig(t *testing.T) {
	logger, closer, err := NewWithConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.NoError(t, closer.Close())
}

func TestRotateLogsIfNeeded(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sweep.log")
	now := time.Now()

	require.NoError(t, os.WriteFile(logPath, []byte("old"), 0o644))
	stale := now.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(logPath, stale, stale))

	ancient := logPath + ".20000101-000000"
	require.NoError(t, os.WriteFile(ancient, []byte("ancient"), 0o644))
	veryStale := now.AddDate(0, 0, -400)
	require.NoError(t, os.Chtimes(ancient, veryStale, veryStale))

	unrelated := filepath.Join(dir, "other.log.1")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(unrelated, veryStale, veryStale))

	rotateLogsIfNeeded(logrus.New(), logPath, 7, now)

	_, err := os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "current log should be rotated away")

	rotated := logPath + "." + stale.Format("20060102-150405")
	_, err = os.Stat(rotated)
	assert.True(t, os.IsNotExist(err), "rotated copy older than the window is pruned too")

	_, err = os.Stat(ancient)
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(unrelated)
	assert.NoError(t, err, "files without the log prefix are untouched")
}

func TestRotateLogsFreshFileKept(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "sweep.log")
	require.NoError(t, os.WriteFile(logPath, []byte("fresh"), 0o644))

	rotateLogsIfNeeded(logrus.New(), logPath, 7, time.Now())

	_, err := os.Stat(logPath)
	assert.NoError(t, err)
}

func TestRotatedLogs(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "sweep.log")
	for _, name := range []string{"sweep.log", "sweep.log.20260101-120000", "sweep.log.bak", "other.log.20260101-120000"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	assert.Equal(t, []string{filepath.Join(dir, "sweep.log.20260101-120000")}, RotatedLogs(logPath))
	assert.Nil(t, RotatedLogs(""))
}
