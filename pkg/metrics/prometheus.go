// Package metrics provides Prometheus metrics for the gigmatch recommendation engine.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Manager owns every collector of the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Session metrics
	sessionsBuilt        prometheus.Counter
	sessionBuildDuration prometheus.Histogram
	corpusSize           prometheus.Gauge
	vocabularySize       prometheus.Gauge

	// Scoring metrics
	eventsScored          prometheus.Counter
	eventScoreFailures    *prometheus.CounterVec
	participantsSkipped   prometheus.Counter
	similaritiesDiscarded prometheus.Counter
	scoringLatency        prometheus.Histogram

	// Worker metrics
	tasksRun      prometheus.Counter
	tasksFailed   prometheus.Counter
	tasksPanicked prometheus.Counter

	// Recommendation requests
	recommendations        *prometheus.CounterVec
	recommendationDuration prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps Go runtime collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gigmatch",
		subsystem:        "recommend",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.sessionsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_built_total",
		Help:      "Scoring sessions (index plus vocabulary) built",
	})
	m.sessionBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_build_duration_milliseconds",
		Help:      "Time to build the TF-IDF index and vocabulary",
		Buckets:   m.histogramBuckets,
	})
	m.corpusSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corpus_documents",
		Help:      "Documents in the most recent session corpus",
	})
	m.vocabularySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "vocabulary_terms",
		Help:      "Distinct terms in the most recent session vocabulary",
	})

	m.eventsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_scored_total",
		Help:      "Candidate events scored successfully",
	})
	m.eventScoreFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_score_failures_total",
		Help:      "Candidate events whose score fell back to zero, by reason",
	}, []string{"reason"})
	m.participantsSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_skipped_total",
		Help:      "Participants excluded because their history lookup failed",
	})
	m.similaritiesDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "similarities_discarded_total",
		Help:      "Cosine similarities dropped from averages as NaN",
	})
	m.scoringLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "event_scoring_latency_milliseconds",
		Help:      "Latency of scoring one candidate event",
		Buckets:   m.histogramBuckets,
	})

	m.tasksRun = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_tasks_total",
		Help:      "Tasks executed by the worker pool",
	})
	m.tasksFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_task_errors_total",
		Help:      "Worker pool tasks that returned an error",
	})
	m.tasksPanicked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_task_panics_total",
		Help:      "Worker pool tasks that panicked and were recovered",
	})

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Recommendation requests by outcome",
	}, []string{"outcome"})
	m.recommendationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "request_duration_milliseconds",
		Help:      "End to end recommendation latency",
		Buckets:   m.histogramBuckets,
	})
}

// Gatherer exposes the package registry, e.g. for tests or custom exporters.
func Gatherer() prometheus.Gatherer {
	return customRegistry
}

// WriteText writes every family of the package registry to w in the
// Prometheus text exposition format.
func WriteText(w io.Writer) error {
	families, err := customRegistry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// RecordSessionBuilt records one session build with its corpus dimensions.
func RecordSessionBuilt(durationMs float64, documents, terms int) {
	if globalManager == nil {
		return
	}
	globalManager.sessionsBuilt.Inc()
	globalManager.sessionBuildDuration.Observe(durationMs)
	globalManager.corpusSize.Set(float64(documents))
	globalManager.vocabularySize.Set(float64(terms))
}

// RecordEventScored records a successful event score and its latency.
func RecordEventScored(latencyMs float64) {
	if globalManager == nil {
		return
	}
	globalManager.eventsScored.Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordEventScoreFailure records an event whose score fell back to zero.
func RecordEventScoreFailure(reason string) {
	if globalManager != nil {
		globalManager.eventScoreFailures.WithLabelValues(reason).Inc()
	}
}

// RecordParticipantSkipped records a participant dropped from the friend overlap.
func RecordParticipantSkipped() {
	if globalManager != nil {
		globalManager.participantsSkipped.Inc()
	}
}

// RecordSimilarityDiscarded records a NaN similarity left out of an average.
func RecordSimilarityDiscarded() {
	if globalManager != nil {
		globalManager.similaritiesDiscarded.Inc()
	}
}

// RecordWorkerTask records one pool task outcome.
func RecordWorkerTask(failed, panicked bool) {
	if globalManager == nil {
		return
	}
	globalManager.tasksRun.Inc()
	if failed {
		globalManager.tasksFailed.Inc()
	}
	if panicked {
		globalManager.tasksPanicked.Inc()
	}
}

// RecordRecommendation records a finished recommendation request.
func RecordRecommendation(outcome string, durationMs float64) {
	if globalManager == nil {
		return
	}
	globalManager.recommendations.WithLabelValues(outcome).Inc()
	globalManager.recommendationDuration.Observe(durationMs)
}
