package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"coq-sweep/internal/safety"
)

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile collector target
}

type LoggingCfg struct {
	Level        string `yaml:"level" json:"level"`                 // logrus level name (default: info)
	File         string `yaml:"file" json:"file"`                   // Optional log file in addition to stderr
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	ProtectedNames  []string   `yaml:"protected_names" json:"protected_names"`
	ProtectedSuffix string     `yaml:"protected_suffix" json:"protected_suffix"`
	ContinueOnError bool       `yaml:"continue_on_error" json:"continue_on_error"` // Collect deletion failures instead of stopping at the first
	DatabasePath    string     `yaml:"database_path" json:"database_path"`         // Path to SQLite database for sweep history, empty disables it
	Metrics         MetricsCfg `yaml:"metrics" json:"metrics"`
	Logging         LoggingCfg `yaml:"logging" json:"logging"`
}

var (
	errInvalidSuffix = errors.New("protected_suffix cannot contain a path separator")
	errInvalidName   = errors.New("protected name must be a bare file name")
	errInvalidLevel  = errors.New("unknown log level")
)

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	// Defaults never fail validation
	_ = cfg.validateAndDefault()
	return cfg
}

// Load reads a YAML config file. An empty file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file means all defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	// A nil list means the key was absent; an explicit empty list is honoured
	if c.ProtectedNames == nil {
		c.ProtectedNames = safety.DefaultProtectedNames()
	}
	for _, n := range c.ProtectedNames {
		if !safety.IsBareName(n) {
			return fmt.Errorf("%w: %q", errInvalidName, n)
		}
	}

	if c.ProtectedSuffix == "" {
		c.ProtectedSuffix = safety.DefaultProtectedSuffix
	}
	if strings.ContainsAny(c.ProtectedSuffix, `/\`) {
		return fmt.Errorf("%w: %q", errInvalidSuffix, c.ProtectedSuffix)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %s", errInvalidLevel, c.Logging.Level)
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}
	if c.Logging.File != "" {
		c.Logging.File = filepath.Clean(c.Logging.File)
	}

	if c.DatabasePath != "" {
		c.DatabasePath = filepath.Clean(c.DatabasePath)
	}
	if c.Metrics.TextfilePath != "" {
		c.Metrics.TextfilePath = filepath.Clean(c.Metrics.TextfilePath)
	}

	return nil
}

// Policy builds the keep policy described by the configuration
func (c *Config) Policy() *safety.Policy {
	return safety.NewPolicy(c.ProtectedNames, c.ProtectedSuffix)
}

// ArtifactPaths lists the files the sweeper itself writes: the history
// database with its SQLite side files, the log file and the metrics textfile
func (c *Config) ArtifactPaths() []string {
	var paths []string
	if c.DatabasePath != "" {
		paths = append(paths,
			c.DatabasePath,
			c.DatabasePath+"-wal",
			c.DatabasePath+"-shm",
			c.DatabasePath+"-journal",
		)
	}
	if c.Logging.File != "" {
		paths = append(paths, c.Logging.File)
	}
	if c.Metrics.TextfilePath != "" {
		paths = append(paths, c.Metrics.TextfilePath)
	}
	return paths
}
