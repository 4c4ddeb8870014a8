package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/copyleftdev/TREMOR/internal/inversion"
)

// Metrics exposes inversion progress as Prometheus collectors on a
// dedicated registry.
type Metrics struct {
	registry   *prometheus.Registry
	iterations prometheus.Counter
	objective  prometheus.Gauge
	stepLen    prometheus.Gauge
	gradNorm   prometheus.Gauge
	duration   prometheus.Histogram
}

func newMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tremor_iterations_total",
			Help: "Outer iterations completed.",
		}),
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tremor_objective",
			Help: "Misfit of the last completed iteration.",
		}),
		stepLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tremor_step_length",
			Help: "Accepted step length of the last completed iteration.",
		}),
		gradNorm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tremor_gradient_norm",
			Help: "L2 norm of the last update direction.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tremor_iteration_duration_seconds",
			Help:    "Wall time per outer iteration.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
	m.registry.MustRegister(m.iterations, m.objective, m.stepLen, m.gradNorm, m.duration)
	return m
}

func (m *Metrics) observe(stats inversion.IterationStats) {
	m.iterations.Inc()
	m.objective.Set(stats.Objective)
	m.stepLen.Set(stats.StepLen)
	m.gradNorm.Set(stats.GradNorm)
	m.duration.Observe(stats.Duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
