// Package metrics exports world activity as Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"

	"VoxelStrata/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "voxelworld"

// Metrics is safe to use through a nil pointer; every method is then a
// no-op.
type Metrics struct {
	ChunksCreated    prometheus.Counter
	ChunksUnloaded   prometheus.Counter
	GenerationFailed prometheus.Counter
	Extractions      prometheus.Counter
	EditsApplied     prometheus.Counter
	EditsDropped     prometheus.Counter
	EditsRejected    prometheus.Counter
	ResidentChunks   prometheus.Gauge
	ExtractTriangles prometheus.Histogram
	TickDuration     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ChunksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_created_total",
			Help:      "Chunks whose generation completed.",
		}),
		ChunksUnloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_unloaded_total",
			Help:      "Chunks released for being out of range.",
		}),
		GenerationFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_generation_failures_total",
			Help:      "Density fill or extraction kernels that failed.",
		}),
		Extractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_extractions_total",
			Help:      "Surface extractions whose mesh was adopted.",
		}),
		EditsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_applied_total",
			Help:      "Per-chunk edit requests applied to a density field.",
		}),
		EditsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_dropped_total",
			Help:      "Submitted edits that reached no chunk.",
		}),
		EditsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_rejected_total",
			Help:      "Submitted edits that failed validation.",
		}),
		ResidentChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resident_chunks",
			Help:      "Chunks currently holding a density field.",
		}),
		ExtractTriangles: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extract_triangles",
			Help:      "Triangles per adopted chunk mesh.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 7),
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one world tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}

	collectors := []prometheus.Collector{
		m.ChunksCreated, m.ChunksUnloaded, m.GenerationFailed, m.Extractions,
		m.EditsApplied, m.EditsDropped, m.EditsRejected,
		m.ResidentChunks, m.ExtractTriangles, m.TickDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ChunkCreated() {
	if m != nil {
		m.ChunksCreated.Inc()
	}
}

func (m *Metrics) ChunkUnloaded() {
	if m != nil {
		m.ChunksUnloaded.Inc()
	}
}

func (m *Metrics) GenerationFailure() {
	if m != nil {
		m.GenerationFailed.Inc()
	}
}

func (m *Metrics) Extracted(triangles int) {
	if m != nil {
		m.Extractions.Inc()
		m.ExtractTriangles.Observe(float64(triangles))
	}
}

func (m *Metrics) EditApplied() {
	if m != nil {
		m.EditsApplied.Inc()
	}
}

func (m *Metrics) EditDropped() {
	if m != nil {
		m.EditsDropped.Inc()
	}
}

func (m *Metrics) EditRejected() {
	if m != nil {
		m.EditsRejected.Inc()
	}
}

func (m *Metrics) SetResident(n int) {
	if m != nil {
		m.ResidentChunks.Set(float64(n))
	}
}

func (m *Metrics) ObserveTick(seconds float64) {
	if m != nil {
		m.TickDuration.Observe(seconds)
	}
}

// Serve exposes the gatherer on addr at /metrics in a background goroutine.
// The returned server can be shut down by the caller.
func Serve(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		logger.Log.Info("Metrics endpoint listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Metrics endpoint stopped", zap.Error(err))
		}
	}()
	return srv
}
