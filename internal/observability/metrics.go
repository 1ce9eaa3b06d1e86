package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics collects per-run counters. The tools are short lived, so the
// registry is exported once at the end of a run instead of being scraped.
// A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	FetchesTotal   *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	RecordsWritten *prometheus.GaugeVec
	RunsTotal      *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
	StageErrors    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poewiki_fetches_total",
				Help: "Wiki requests by pipeline, source and result",
			},
			[]string{"pipeline", "source", "result"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "poewiki_fetch_duration_seconds",
				Help:    "Time spent waiting for wiki responses",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"pipeline", "source"},
		),
		RecordsWritten: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "poewiki_records_written",
				Help: "Records written by the last run",
			},
			[]string{"pipeline"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poewiki_runs_total",
				Help: "Pipeline runs by result",
			},
			[]string{"pipeline", "result"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "poewiki_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"pipeline", "stage"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "poewiki_stage_errors_total",
				Help: "Failed pipeline stages by error type",
			},
			[]string{"pipeline", "stage", "type"},
		),
	}
	m.Registry.MustRegister(m.FetchesTotal, m.FetchDuration, m.RecordsWritten, m.RunsTotal, m.StageDuration, m.StageErrors)
	return m
}

func (m *Metrics) ObserveFetch(pipeline, source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(pipeline, source, result(err)).Inc()
	m.FetchDuration.WithLabelValues(pipeline, source).Observe(d.Seconds())
}

func (m *Metrics) ObserveRun(pipeline string, records int, err error) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(pipeline, result(err)).Inc()
	if err == nil {
		m.RecordsWritten.WithLabelValues(pipeline).Set(float64(records))
	}
}

func (m *Metrics) RecordStageDuration(pipeline, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(pipeline, stage).Observe(d.Seconds())
}

func (m *Metrics) RecordError(pipeline, stage, errorType string) {
	if m == nil {
		return
	}
	m.StageErrors.WithLabelValues(pipeline, stage, errorType).Inc()
}

// Export writes the registry to a node_exporter textfile and/or pushes it to
// a Pushgateway. Empty targets are skipped.
func (m *Metrics) Export(textfile, pushURL, job string) error {
	if m == nil {
		return nil
	}
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, m.Registry); err != nil {
			return fmt.Errorf("metrics textfile: %w", err)
		}
	}
	if pushURL != "" {
		if err := push.New(pushURL, job).Gatherer(m.Registry).Push(); err != nil {
			return fmt.Errorf("metrics push: %w", err)
		}
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
