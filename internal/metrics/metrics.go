// Package metrics keeps per-run Prometheus metrics for the ranking pipeline.
// Runs are batch jobs, so metrics are written to a textfile for the node
// exporter instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "resume_ranker"

// Skip reasons used as the "reason" label of ResumesSkipped.
const (
	ReasonExtract = "extract"
	ReasonEmpty   = "empty"
	ReasonFilter  = "filter"
)

// Metrics holds every collector of a run on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	resumesProcessed prometheus.Counter
	resumesSkipped   *prometheus.CounterVec
	candidatesScored prometheus.Counter
	scoringDuration  prometheus.Histogram
	scores           prometheus.Histogram
	lastRun          prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		resumesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resumes_processed_total",
			Help:      "Total resumes turned into documents",
		}),

		resumesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resumes_skipped_total",
			Help:      "Total resumes skipped",
		}, []string{"reason"}),

		candidatesScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Total candidates that received a similarity score",
		}),

		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Duration of one scoring session",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_score",
			Help:      "Distribution of cosine similarity scores",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last finished run",
		}),
	}

	m.registry.MustRegister(
		m.resumesProcessed, m.resumesSkipped,
		m.candidatesScored, m.scoringDuration,
		m.scores, m.lastRun,
	)

	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ResumeProcessed() {
	m.resumesProcessed.Inc()
}

func (m *Metrics) ResumesSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	m.resumesSkipped.WithLabelValues(reason).Add(float64(n))
}

// ObserveScoring records one scoring session and its resulting scores.
func (m *Metrics) ObserveScoring(took time.Duration, scores []float64) {
	m.scoringDuration.Observe(took.Seconds())
	m.candidatesScored.Add(float64(len(scores)))
	for _, s := range scores {
		m.scores.Observe(s)
	}
}

// Finish stamps the run completion time.
func (m *Metrics) Finish(at time.Time) {
	m.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the registry in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
