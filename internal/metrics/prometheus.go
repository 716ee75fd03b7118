package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once        sync.Once
	entities    *prom.CounterVec
	documents   prom.Counter
	diagnostics *prom.CounterVec
	runDuration prom.Histogram
}

// NewPrometheusRecorder constructs and registers the run metrics
// (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.entities = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ahelpgen",
			Name:      "entities_total",
			Help:      "Entities handled per run, by outcome",
		}, []string{"outcome"})
		pr.documents = prom.NewCounter(prom.CounterOpts{
			Namespace: "ahelpgen",
			Name:      "documents_written_total",
			Help:      "Help documents written to the output directory",
		})
		pr.diagnostics = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "ahelpgen",
			Name:      "diagnostics_total",
			Help:      "Diagnostics emitted, by severity",
		}, []string{"severity"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "ahelpgen",
			Name:      "run_duration_seconds",
			Help:      "Total batch run duration",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.entities, pr.documents, pr.diagnostics, pr.runDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncEntity(outcome Outcome) {
	if p == nil || p.entities == nil {
		return
	}
	p.entities.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncDocumentWritten() {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.Inc()
}

func (p *PrometheusRecorder) IncDiagnostic(severity string) {
	if p == nil || p.diagnostics == nil {
		return
	}
	p.diagnostics.WithLabelValues(severity).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler serving the registry, for the watch
// command's metrics endpoint.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		reg = prom.DefaultRegisterer.(*prom.Registry)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
