// Package metrics exposes this store's runtime counters and histograms
// through github.com/prometheus/client_golang, the instrumentation
// library erigon-lib itself wires for its own database and transaction
// metrics (e.g. db size, transaction duration gauges).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every metric the root fpta package updates. A caller
// registers it once against a prometheus.Registerer of their choosing
// (process-global or test-local); nothing in this package reaches for the
// default global registry itself.
type Registry struct {
	TxnBeginTotal    *prometheus.CounterVec
	TxnDuration      *prometheus.HistogramVec
	HandleCacheHits  prometheus.Counter
	HandleCacheMiss  prometheus.Counter
	SchemaCSN        prometheus.Gauge
	CursorMoveTotal  *prometheus.CounterVec
	InternalAborts   prometheus.Counter
}

// NewRegistry builds a Registry with the given namespace (e.g. "fpta")
// and registers every metric against reg.
func NewRegistry(namespace string, reg prometheus.Registerer) *Registry {
	r := &Registry{
		TxnBeginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "txn_begin_total",
			Help:      "Transactions begun, partitioned by level (read/write/schema).",
		}, []string{"level"}),
		TxnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "txn_duration_seconds",
			Help:      "Transaction lifetime from begin to commit/abort.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"level", "outcome"}),
		HandleCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handle_cache_hits_total",
			Help:      "Dbi handle-cache lookups that found a valid entry.",
		}),
		HandleCacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handle_cache_misses_total",
			Help:      "Dbi handle-cache lookups that required reopening a dbi.",
		}),
		SchemaCSN: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_csn",
			Help:      "Last-observed schema sequence number.",
		}),
		CursorMoveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cursor_move_total",
			Help:      "Cursor move operations, partitioned by outcome (ok/nodata/error).",
		}, []string{"outcome"}),
		InternalAborts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "internal_aborts_total",
			Help:      "Transactions ended via internal_abort (engine error or abort=true).",
		}),
	}
	reg.MustRegister(
		r.TxnBeginTotal, r.TxnDuration, r.HandleCacheHits, r.HandleCacheMiss,
		r.SchemaCSN, r.CursorMoveTotal, r.InternalAborts,
	)
	return r
}
