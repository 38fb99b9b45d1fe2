// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"IdeaScanner/internal/ports"
)

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry     *prometheus.Registry
	posts        *prometheus.CounterVec
	batchFailed  prometheus.Counter
	runDuration  prometheus.Histogram
	runsFinished prometheus.Counter
}

var _ ports.Metrics = (*Metrics)(nil)

// New registers the ideascanner collectors plus Go runtime collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ideascanner",
			Name:      "posts_total",
			Help:      "Posts seen by the pipeline, by stage.",
		}, []string{"stage"}),
		batchFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ideascanner",
			Name:      "batch_failures_total",
			Help:      "Batches dropped because extraction or persistence failed.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ideascanner",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		runsFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ideascanner",
			Name:      "runs_total",
			Help:      "Completed pipeline runs.",
		}),
	}

	m.registry.MustRegister(
		m.posts,
		m.batchFailed,
		m.runDuration,
		m.runsFinished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AddStage adds n to the counter of a ports.Stage* label. Non-positive n is ignored.
func (m *Metrics) AddStage(stage string, n int) {
	if n <= 0 {
		return
	}
	m.posts.WithLabelValues(stage).Add(float64(n))
}

// BatchFailed counts a dropped batch.
func (m *Metrics) BatchFailed() {
	m.batchFailed.Inc()
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.runsFinished.Inc()
	m.runDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
