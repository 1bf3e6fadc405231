package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docnav"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration      *prom.HistogramVec
	buildDuration      prom.Histogram
	buildOutcome       *prom.CounterVec
	resolutionFailures *prom.CounterVec
	documents          *prom.GaugeVec
	generation         prom.Gauge
	queries            *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total snapshot build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Snapshot builds by outcome",
		}, []string{"outcome"}),
		resolutionFailures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Failed builds by cause",
		}, []string{"kind"}),
		documents: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "documents",
			Help:      "Documents in the current snapshot",
		}, []string{"state"}),
		generation: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_generation",
			Help:      "Generation of the current snapshot",
		}),
		queries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Navigation queries by operation and result",
		}, []string{"op", "result"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.resolutionFailures,
		pr.documents, pr.generation, pr.queries)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(result ResultLabel) {
	p.buildOutcome.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncResolutionFailure(kind string) {
	p.resolutionFailures.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) SetDocuments(registered, listed int) {
	p.documents.WithLabelValues("registered").Set(float64(registered))
	p.documents.WithLabelValues("listed").Set(float64(listed))
}

func (p *PrometheusRecorder) SetGeneration(gen uint64) {
	p.generation.Set(float64(gen))
}

func (p *PrometheusRecorder) IncQuery(op string, result ResultLabel) {
	p.queries.WithLabelValues(op, string(result)).Inc()
}
