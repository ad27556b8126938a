package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	// Registry holds every coq-sweep collector. It is kept apart from the
	// default registry so textfile exports carry only sweep metrics.
	Registry = prometheus.NewRegistry()
)

// Init initializes all metrics subsystems and registers them with Registry
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		initSweepMetrics()
		registerSweepMetrics()

		// Initialize metrics with default values so they appear immediately
		SweepLastRunTimestamp.Set(0)
	})
}

// WriteTextfile exports the current metric values in the Prometheus text
// format for the node_exporter textfile collector. The file is written
// atomically.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
