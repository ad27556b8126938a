package runner

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"coq-sweep/internal/config"
	"coq-sweep/internal/database"
	"coq-sweep/internal/metrics"
	"coq-sweep/internal/safety"
	"coq-sweep/internal/sweep"
)

// Options carries the per-invocation knobs that do not live in config
type Options struct {
	Fs           afero.Fs // defaults to the OS filesystem
	Protect      []string // extra protected names, e.g. the running binary
	ProtectPaths []string // extra protected files, e.g. the config file
	DB           *database.HistoryDB
	Logger       logrus.FieldLogger
	Now          func() time.Time
}

// RunOnce performs a single sweep of dir described by cfg
func RunOnce(cfg *config.Config, dir string, opts Options) (*sweep.Result, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	policy := cfg.Policy()
	for _, name := range opts.Protect {
		if safety.IsBareName(name) {
			policy = policy.WithName(name)
		}
	}

	start := opts.Now()
	metrics.Init()
	metrics.RecordSweepRun()

	cleaner := sweep.NewCleaner(opts.Fs, policy, opts.Logger)
	cleaner.SetContinueOnError(cfg.ContinueOnError)
	cleaner.SetProtectedPaths(append(cfg.ArtifactPaths(), opts.ProtectPaths...))
	if opts.DB != nil {
		runID := NewRunID(start)
		cleaner.SetHistory(opts.DB, runID)
		opts.Logger.WithField("run_id", runID).Debug("recording sweep history")
	}

	result, err := cleaner.Clean(dir)

	metrics.ObserveSweepDuration(opts.Now().Sub(start))
	if cfg.Metrics.TextfilePath != "" {
		if werr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
			opts.Logger.WithError(werr).Warn("failed to export metrics")
		}
	}

	return result, err
}

// NewRunID derives a sortable run identifier from the sweep start time
func NewRunID(start time.Time) string {
	return start.UTC().Format("20060102T150405.000000000Z")
}
