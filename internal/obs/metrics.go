package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/histogram the qube operations report.
type Metrics struct {
	UnionOps               prometheus.Counter
	IntersectOps           prometheus.Counter
	DifferenceOps          prometheus.Counter
	SymmetricDifferenceOps prometheus.Counter
	CompressOps            prometheus.Counter
	SelectOps              prometheus.Counter
	SetOpErrors            prometheus.Counter
	SetOpLatency           prometheus.Histogram
	CompressionRatio       prometheus.Histogram
}

// NewMetrics builds and registers a fresh Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		UnionOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_union_ops_total",
			Help: "Total union operations performed",
		}),
		IntersectOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_intersect_ops_total",
			Help: "Total intersection operations performed",
		}),
		DifferenceOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_difference_ops_total",
			Help: "Total difference operations performed",
		}),
		SymmetricDifferenceOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_symmetric_difference_ops_total",
			Help: "Total symmetric difference operations performed",
		}),
		CompressOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_compress_ops_total",
			Help: "Total compression passes performed",
		}),
		SelectOps: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_select_ops_total",
			Help: "Total selection operations performed",
		}),
		SetOpErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "qubed_set_op_errors_total",
			Help: "Total set algebra operations that returned an error",
		}),
		SetOpLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "qubed_set_op_latency_seconds",
			Help: "Latency of set algebra operations",
		}),
		CompressionRatio: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "qubed_compression_ratio",
			Help:    "Ratio of node count before to after a compression pass",
			Buckets: []float64{1, 1.5, 2, 3, 5, 10, 20},
		}),
	}
}

// Observe records one set-algebra operation's result. Errors increment
// SetOpErrors on top of the per-kind op counter so both totals stay
// consistent with each other.
func (m *Metrics) Observe(kind string, seconds float64, err error) {
	switch kind {
	case "union":
		m.UnionOps.Inc()
	case "intersect":
		m.IntersectOps.Inc()
	case "difference":
		m.DifferenceOps.Inc()
	case "symmetric_difference":
		m.SymmetricDifferenceOps.Inc()
	case "compress":
		m.CompressOps.Inc()
	case "select":
		m.SelectOps.Inc()
	}
	m.SetOpLatency.Observe(seconds)
	if err != nil {
		m.SetOpErrors.Inc()
	}
}
