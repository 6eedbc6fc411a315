// Package metrics exposes prometheus instrumentation for cron runs.
// A short-lived process cannot be scraped, so the registry can be flushed to
// a node_exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunMetrics holds the collectors recorded by the runner and the dispatcher.
type RunMetrics struct {
	registry        *prometheus.Registry
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	lastRun         *prometheus.GaugeVec
	handlerCalls    *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New(namespace string) *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of cron runs by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall-clock duration of cron runs",
				Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 900},
			},
			[]string{"mode"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the last finished run by mode",
			},
			[]string{"mode"},
		),
		handlerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_calls_total",
				Help:      "Plugin handler invocations by event, plugin and outcome",
			},
			[]string{"event", "plugin", "status"},
		),
		handlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_duration_seconds",
				Help:      "Duration of plugin handler invocations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"event", "plugin"},
		),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.lastRun,
		m.handlerCalls,
		m.handlerDuration,
	)

	return m
}

// RecordRun records one finished run.
func (m *RunMetrics) RecordRun(mode string, duration time.Duration, err error) {
	m.runsTotal.WithLabelValues(mode, status(err)).Inc()
	m.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
	m.lastRun.WithLabelValues(mode).Set(float64(time.Now().Unix()))
}

// ObserveHandler records one plugin handler call.
func (m *RunMetrics) ObserveHandler(event, plugin string, duration time.Duration, err error) {
	m.handlerCalls.WithLabelValues(event, plugin, status(err)).Inc()
	m.handlerDuration.WithLabelValues(event, plugin).Observe(duration.Seconds())
}

// WriteTextfile writes the registry in text exposition format to path.
// The write is atomic, as required by the node_exporter textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
