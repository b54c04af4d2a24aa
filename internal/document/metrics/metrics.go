package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the document module.
// Tracks parse outcomes, editor operations, saves, and comparison latency.
type Metrics struct {
	ParsesTotal     prometheus.Counter
	ParseEmpty      prometheus.Counter
	RowOps          *prometheus.CounterVec
	VersionsSaved   prometheus.Counter
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	CompareDuration prometheus.Histogram
}

// New creates a Metrics instance with all document module metrics registered.
func New() *Metrics {
	return &Metrics{
		ParsesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_document_parses_total",
			Help: "Total number of document payload parses",
		}),
		ParseEmpty: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_document_parses_empty_total",
			Help: "Parses that produced an empty model (malformed or empty payload)",
		}),
		RowOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "capture_document_row_operations_total",
			Help: "Line-item editor operations by kind",
		}, []string{"operation"}),
		VersionsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_document_versions_saved_total",
			Help: "Total number of document versions appended",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_document_cache_hits_total",
			Help: "Version snapshot cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "capture_document_cache_misses_total",
			Help: "Version snapshot cache misses",
		}),
		CompareDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "capture_document_compare_duration_seconds",
			Help:    "Duration of version comparison operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementParse records one parse, flagging models that came out empty.
func (m *Metrics) IncrementParse(empty bool) {
	m.ParsesTotal.Inc()
	if empty {
		m.ParseEmpty.Inc()
	}
}

// IncrementRowOp records one editor operation (add_row, delete_row, update_field).
func (m *Metrics) IncrementRowOp(operation string) {
	m.RowOps.WithLabelValues(operation).Inc()
}

// IncrementVersionSaved records a successful version append.
func (m *Metrics) IncrementVersionSaved() {
	m.VersionsSaved.Inc()
}

// IncrementCache records a cache lookup outcome.
func (m *Metrics) IncrementCache(hit bool) {
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveCompare records the duration of a Compare operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCompare(start time.Time) {
	m.CompareDuration.Observe(time.Since(start).Seconds())
}
