package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the run metrics of one process. Every method is safe on a
// nil *Registry so callers can leave metrics unconfigured.
type Registry struct {
	reg *prometheus.Registry

	// Apply metrics
	ApplyRuns    *prometheus.CounterVec
	ApplyKeys    *prometheus.CounterVec
	CachePurges  *prometheus.CounterVec
	ConfigWrites *prometheus.CounterVec

	// Validate metrics
	ValidateRuns    *prometheus.CounterVec
	ValidateEntries *prometheus.CounterVec

	// Collaborator metrics
	CollaboratorCalls   *prometheus.CounterVec
	CollaboratorLatency *prometheus.HistogramVec

	LastRun *prometheus.GaugeVec
}

// New creates a registry with its own prometheus.Registry, isolated from the
// process-wide default.
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}
	f := promauto.With(r.reg)

	r.ApplyRuns = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_apply_runs_total",
		Help: "Apply runs by result",
	}, []string{"preset", "result"})

	r.ApplyKeys = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_apply_keys_total",
		Help: "Preset keys processed by apply",
	}, []string{"kind", "status"})

	r.CachePurges = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_cache_purges_total",
		Help: "Cache purge calls by result",
	}, []string{"result"})

	r.ConfigWrites = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_config_block_edits_total",
		Help: "Config-block upserts by action",
	}, []string{"action"})

	r.ValidateRuns = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_validate_runs_total",
		Help: "Validate runs by aggregate status",
	}, []string{"preset", "status"})

	r.ValidateEntries = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_validate_entries_total",
		Help: "Validation entries by status",
	}, []string{"status"})

	r.CollaboratorCalls = f.NewCounterVec(prometheus.CounterOpts{
		Name: "presetctl_collaborator_calls_total",
		Help: "Collaborator invocations by subcommand and result",
	}, []string{"command", "result"})

	r.CollaboratorLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "presetctl_collaborator_call_duration_seconds",
		Help:    "Collaborator call latency",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"command"})

	r.LastRun = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "presetctl_last_run_timestamp_seconds",
		Help: "Unix timestamp of the last run per command",
	}, []string{"command"})

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

func (r *Registry) ObserveApply(preset, result string) {
	if r == nil {
		return
	}
	r.ApplyRuns.WithLabelValues(preset, result).Inc()
}

func (r *Registry) ObserveKey(kind, status string) {
	if r == nil {
		return
	}
	r.ApplyKeys.WithLabelValues(kind, status).Inc()
}

func (r *Registry) ObservePurge(err error) {
	if r == nil {
		return
	}
	r.CachePurges.WithLabelValues(result(err)).Inc()
}

func (r *Registry) ObserveEdit(action string) {
	if r == nil {
		return
	}
	r.ConfigWrites.WithLabelValues(action).Inc()
}

// ObserveValidate records a validation run and its per-status entry counts.
func (r *Registry) ObserveValidate(preset, status string, entries map[string]int) {
	if r == nil {
		return
	}
	r.ValidateRuns.WithLabelValues(preset, status).Inc()
	for s, n := range entries {
		r.ValidateEntries.WithLabelValues(s).Add(float64(n))
	}
}

// ObserveCall records one collaborator invocation.
func (r *Registry) ObserveCall(command string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.CollaboratorCalls.WithLabelValues(command, result(err)).Inc()
	r.CollaboratorLatency.WithLabelValues(command).Observe(d.Seconds())
}

// MarkRun stamps the last-run gauge for command.
func (r *Registry) MarkRun(command string, at time.Time) {
	if r == nil {
		return
	}
	r.LastRun.WithLabelValues(command).Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the node-exporter textfile format.
// The write goes through a temp file so the collector never reads a partial
// file.
func (r *Registry) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create textfile dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
