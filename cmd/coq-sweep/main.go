package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"coq-sweep/internal/config"
	"coq-sweep/internal/database"
	"coq-sweep/internal/exitcodes"
	"coq-sweep/internal/logging"
	"coq-sweep/internal/runner"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (built-in defaults when empty)")
	dir := flag.String("dir", ".", "Directory to sweep")
	keepGoing := flag.Bool("keep-going", false, "Continue past failed deletions and report them all")
	flag.Parse()

	os.Exit(run(*configPath, *dir, *keepGoing))
}

func run(configPath, dir string, keepGoing bool) int {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logging.New().WithError(err).Error("failed to load config")
			return exitcodes.InvalidConfig
		}
		cfg = loaded
	}
	if keepGoing {
		cfg.ContinueOnError = true
	}

	logger, closer, err := logging.NewWithConfig(&cfg.Logging)
	if err != nil {
		logging.New().WithError(err).Error("failed to set up logging")
		return exitcodes.InvalidConfig
	}
	defer closer.Close()

	var db *database.HistoryDB
	if cfg.DatabasePath != "" {
		logger.WithField("path", cfg.DatabasePath).Debug("opening sweep history")
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.WithError(err).Error("failed to open history database")
			return exitcodes.RuntimeError
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.WithError(err).Error("failed to close history database")
			}
		}()
	}

	_, err = runner.RunOnce(cfg, dir, runner.Options{
		Protect:      selfName(dir, logger),
		ProtectPaths: ownFiles(configPath, cfg),
		DB:           db,
		Logger:       logger,
	})
	if err != nil {
		logger.WithError(err).Error("sweep failed")
	}
	return exitcodes.FromError(err)
}

// ownFiles lists the config file and rotated logs, which a sweep of their
// directory must leave in place. The remaining artifacts come from cfg.
func ownFiles(configPath string, cfg *config.Config) []string {
	var paths []string
	if configPath != "" {
		paths = append(paths, configPath)
	}
	return append(paths, logging.RotatedLogs(cfg.Logging.File)...)
}

// selfName protects the running binary when it lives in the swept directory
func selfName(dir string, logger logrus.FieldLogger) []string {
	exe, err := os.Executable()
	if err != nil {
		logger.WithError(err).Debug("cannot resolve own executable")
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	target, err := filepath.Abs(dir)
	if err != nil {
		return nil
	}
	if resolved, err := filepath.EvalSymlinks(target); err == nil {
		target = resolved
	}
	if filepath.Dir(exe) != target {
		return nil
	}
	return []string{filepath.Base(exe)}
}
