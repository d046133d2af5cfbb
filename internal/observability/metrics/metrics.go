package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the triage pipeline.
type TriageMetrics struct {
	sessionsStarted    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	classifications    *prometheus.CounterVec
	llmLatency         prometheus.Histogram
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "sessions",
			Name:      "started_total",
			Help:      "Total triage sessions started",
		}, []string{"kind"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "intake",
			Name:      "validation_failures_total",
			Help:      "Total intake field validation failures",
		}, []string{"field"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triage",
			Subsystem: "classification",
			Name:      "results_total",
			Help:      "Total triage classifications produced",
		}, []string{"level", "source"}),
		llmLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "triage",
			Subsystem: "classification",
			Name:      "llm_latency_seconds",
			Help:      "Latency of reasoning engine calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsStarted, m.validationFailures, m.classifications, m.llmLatency)
	return m
}

func (m *TriageMetrics) ObserveSessionStarted(kind string) {
	if m == nil {
		return
	}
	m.sessionsStarted.WithLabelValues(kind).Inc()
}

func (m *TriageMetrics) ObserveValidationFailure(field string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(field).Inc()
}

// ObserveClassification records a produced result. source is "model" for a
// parsed reasoning-engine reply and "fallback" for the deterministic record.
func (m *TriageMetrics) ObserveClassification(level, source string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(level, source).Inc()
}

func (m *TriageMetrics) ObserveLLMLatency(seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.Observe(seconds)
}
