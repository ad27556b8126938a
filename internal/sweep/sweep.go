package sweep

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"coq-sweep/internal/database"
	"coq-sweep/internal/fsops"
	"coq-sweep/internal/metrics"
	"coq-sweep/internal/safety"
	"coq-sweep/internal/scan"
)

// Result is the observable outcome of one sweep
type Result struct {
	Dir        string
	Deleted    []scan.Entry
	Kept       []scan.Decision
	Failures   []*DeletionFailedError
	BytesFreed int64
}

// Cleaner removes every regular file of a directory that its policy does not keep
type Cleaner struct {
	fs              afero.Fs
	policy          *safety.Policy
	logger          logrus.FieldLogger
	deleter         fsops.Deleter
	validator       *safety.Validator // nil means bind to the swept directory
	protectedPaths  []string
	db              *database.HistoryDB
	runID           string
	continueOnError bool
	now             func() time.Time
}

// NewCleaner creates a Cleaner over fs. A nil policy means the default policy.
func NewCleaner(fs afero.Fs, policy *safety.Policy, logger logrus.FieldLogger) *Cleaner {
	if policy == nil {
		policy = safety.DefaultPolicy()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	metrics.Init()
	return &Cleaner{
		fs:      fs,
		policy:  policy,
		logger:  logger,
		deleter: fsops.FsDeleter{Fs: fs},
		now:     time.Now,
	}
}

// SetDeleter replaces the deleter, used by tests to observe or fail deletions
func (c *Cleaner) SetDeleter(d fsops.Deleter) {
	c.deleter = d
}

// SetValidator pins the safety validator instead of deriving it per sweep
func (c *Cleaner) SetValidator(v *safety.Validator) {
	c.validator = v
}

// SetProtectedPaths names files that are never deleted even when the policy
// would remove them. Used for the sweeper's own config, database and logs.
func (c *Cleaner) SetProtectedPaths(paths []string) {
	c.protectedPaths = append([]string(nil), paths...)
}

// SetHistory records every decision into db under runID
func (c *Cleaner) SetHistory(db *database.HistoryDB, runID string) {
	c.db = db
	c.runID = runID
}

// SetContinueOnError switches from fail-fast to collect-and-continue
func (c *Cleaner) SetContinueOnError(v bool) {
	c.continueOnError = v
}

// Clean sweeps the OS directory dir with the default policy
func Clean(dir string) error {
	_, err := NewCleaner(afero.NewOsFs(), nil, nil).Clean(dir)
	return err
}

// Clean performs one pass over the immediate entries of dir.
//
// In fail-fast mode the first failed deletion stops the pass and is returned
// as a *DeletionFailedError; entries already removed stay removed. With
// continue-on-error every failure is collected in Result.Failures and the
// returned error joins them.
func (c *Cleaner) Clean(dir string) (*Result, error) {
	if dir == "" {
		dir = "."
	}
	log := c.logger.WithField("dir", dir)
	result := &Result{Dir: dir}

	entries, err := scan.List(c.fs, dir)
	if err != nil {
		log.WithError(err).Error("cannot list directory")
		return result, directoryUnreadable(dir, err)
	}
	log.WithField("entries", len(entries)).Debug("starting sweep")

	validator := c.validator
	if validator == nil {
		validator = safety.NewValidator(dir, c.protectedPaths)
	}

	var errs []error
	for _, entry := range entries {
		decision := c.policy.Evaluate(entry)
		path := filepath.Join(dir, entry.Name)

		if decision.Action == scan.ActionDelete {
			verr := validator.ValidateDeleteTarget(path)
			switch {
			case errors.Is(verr, safety.ErrProtectedPath):
				decision = scan.Keep(entry, scan.ReasonOwnArtifact)
			case verr != nil:
				log.WithError(verr).WithField("name", entry.Name).Error("safety validator rejected delete target")
				decision = scan.Keep(entry, scan.ReasonUnsafePath)
			}
		}

		if decision.Action == scan.ActionKeep {
			log.WithFields(logrus.Fields{
				"name":     entry.Name,
				"kind":     entry.Kind,
				"reason":   decision.Reason,
				"decision": decision.ToLogString(),
			}).Debug("keep")
			metrics.RecordKeep(string(decision.Reason))
			c.record(dir, decision, "")
			result.Kept = append(result.Kept, decision)
			continue
		}

		if err := c.deleter.Remove(path); err != nil {
			failure := &DeletionFailedError{Entry: entry.Name, Cause: err}
			log.WithError(err).WithField("name", entry.Name).Error("failed to delete")
			metrics.RecordDeletionError()
			c.record(dir, decision, err.Error())
			result.Failures = append(result.Failures, failure)

			if !c.continueOnError {
				return result, failure
			}
			errs = append(errs, failure)
			continue
		}

		log.WithFields(logrus.Fields{
			"name":     entry.Name,
			"size":     entry.Size,
			"decision": decision.ToLogString(),
		}).Info("deleted")
		metrics.RecordDeletion(entry.Size)
		c.record(dir, decision, "")
		result.Deleted = append(result.Deleted, entry)
		result.BytesFreed += entry.Size
	}

	log.WithFields(logrus.Fields{
		"deleted":     len(result.Deleted),
		"kept":        len(result.Kept),
		"failed":      len(result.Failures),
		"bytes_freed": result.BytesFreed,
	}).Info("sweep complete")

	return result, errors.Join(errs...)
}

// record writes a history row; history failures never change the sweep outcome
func (c *Cleaner) record(dir string, decision scan.Decision, errMsg string) {
	if c.db == nil {
		return
	}
	if err := c.db.RecordDecision(c.runID, dir, decision, errMsg, c.now()); err != nil {
		c.logger.WithError(err).Warn("failed to record sweep history")
	}
}
