package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"coq-sweep/internal/config"
)

// New creates a logger writing to stderr with default settings
func New() *logrus.Logger {
	logger, _, err := NewWithConfig(nil)
	if err != nil {
		// stderr-only setup cannot fail
		panic(err)
	}
	return logger
}

// NewWithConfig creates a logger from the logging section of cfg. When a log
// file is configured it is rotated if stale and opened for append; the
// returned closer releases it and is never nil.
func NewWithConfig(cfg *config.LoggingCfg) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000000Z07:00",
	})

	if cfg == nil {
		return logger, nopCloser{}, nil
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.File == "" {
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure log directory: %w", err)
	}

	rotateDays := 30 // default
	if cfg.RotationDays > 0 {
		rotateDays = cfg.RotationDays
	}
	rotateLogsIfNeeded(logger, cfg.File, rotateDays, time.Now())

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}

	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return logger, f, nil
}

const rotationLayout = "20060102-150405"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// rotateLogsIfNeeded renames the log file aside once it is older than rotationDays
func rotateLogsIfNeeded(logger *logrus.Logger, logPath string, rotationDays int, now time.Time) {
	info, err := os.Stat(logPath)
	if err != nil {
		// Log file doesn't exist yet, nothing to rotate
		return
	}

	cutoffTime := now.AddDate(0, 0, -rotationDays)
	if !info.ModTime().Before(cutoffTime) {
		return
	}

	timestamp := info.ModTime().Format(rotationLayout)
	rotatedPath := logPath + "." + timestamp

	if err := os.Rename(logPath, rotatedPath); err != nil {
		logger.WithError(err).Warn("failed to rotate log file")
		return
	}

	cleanupOldLogs(logger, logPath, rotationDays, now)
}

// cleanupOldLogs removes rotated log files older than rotationDays
func cleanupOldLogs(logger *logrus.Logger, logPath string, rotationDays int, now time.Time) {
	logDir := filepath.Dir(logPath)
	base := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := now.AddDate(0, 0, -rotationDays)

	for _, entry := range entries {
		if entry.IsDir() || !isRotatedLog(entry.Name(), base) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			fullPath := filepath.Join(logDir, entry.Name())
			if err := os.Remove(fullPath); err != nil {
				logger.WithError(err).WithField("path", fullPath).Warn("failed to remove old log file")
			}
		}
	}
}

// RotatedLogs returns the rotated copies of logPath that currently exist
func RotatedLogs(logPath string) []string {
	if logPath == "" {
		return nil
	}
	logDir := filepath.Dir(logPath)
	base := filepath.Base(logPath)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil
	}

	var rotated []string
	for _, entry := range entries {
		if !entry.IsDir() && isRotatedLog(entry.Name(), base) {
			rotated = append(rotated, filepath.Join(logDir, entry.Name()))
		}
	}
	return rotated
}

// isRotatedLog reports whether name is base followed by a rotation timestamp
func isRotatedLog(name, base string) bool {
	stamp, ok := strings.CutPrefix(name, base+".")
	if !ok {
		return false
	}
	_, err := time.Parse(rotationLayout, stamp)
	return err == nil
}
