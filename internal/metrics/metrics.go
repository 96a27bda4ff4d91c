package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons reported by ObserveFailure.
const (
	ReasonOutOfRange   = "out_of_range"
	ReasonVertexBudget = "vertex_budget"
	ReasonInstall      = "install"
	ReasonPanic        = "panic"
	ReasonOther        = "other"
)

// Collector holds the meshing metrics on its own registry so several
// collectors can coexist in one process (tests, embedded hosts).
// All methods are safe on a nil *Collector.
type Collector struct {
	registry *prometheus.Registry

	generated *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	quads     prometheus.Histogram
	dirty     prometheus.Gauge
	ticks     prometheus.Histogram
}

// New creates a collector and registers its metrics.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxmesh",
			Name:      "meshes_generated_total",
			Help:      "Chunk meshes generated successfully.",
		}, []string{"strategy"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxmesh",
			Name:      "mesh_failures_total",
			Help:      "Chunk meshing attempts that left the chunk dirty.",
		}, []string{"reason"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxmesh",
			Name:      "mesh_duration_seconds",
			Help:      "Time spent generating one chunk mesh.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}, []string{"strategy"}),
		quads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxmesh",
			Name:      "mesh_quads",
			Help:      "Quads per generated chunk mesh.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		dirty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxmesh",
			Name:      "dirty_chunks",
			Help:      "Chunks waiting for a remesh at the start of the last tick.",
		}),
		ticks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxmesh",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one scheduler tick.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	c.registry.MustRegister(c.generated, c.failures, c.duration, c.quads, c.dirty, c.ticks)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveMesh records one successful mesh.
func (c *Collector) ObserveMesh(strategy string, d time.Duration, quads int) {
	if c == nil {
		return
	}
	c.generated.WithLabelValues(strategy).Inc()
	c.duration.WithLabelValues(strategy).Observe(d.Seconds())
	c.quads.Observe(float64(quads))
}

// ObserveFailure records one failed attempt.
func (c *Collector) ObserveFailure(reason string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(reason).Inc()
}

// SetDirty sets the dirty-chunk gauge.
func (c *Collector) SetDirty(n int) {
	if c == nil {
		return
	}
	c.dirty.Set(float64(n))
}

// ObserveTick records the duration of one scheduler tick.
func (c *Collector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.ticks.Observe(d.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
