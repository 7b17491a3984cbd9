// Package prom exports cache.Metrics to Prometheus.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/layercache/cache"
)

// Adapter owns the Prometheus collectors shared by every cache region. Each
// series carries a "cache" label with the region id.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	evicts  *prometheus.CounterVec
	entries *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}, labels)
	}
	a := &Adapter{
		hits:   counter("hits_total", "Cache hits", "cache"),
		misses: counter("misses_total", "Cache misses", "cache"),
		evicts: counter("evictions_total", "Cache evictions by reason", "cache", "reason"),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}, []string{"cache"}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries)
	return a
}

// For returns the Metrics of region id. It matches the signature expected by
// builder.WithMetrics.
func (a *Adapter) For(id string) cache.Metrics {
	return &region{
		hits:    a.hits.WithLabelValues(id),
		misses:  a.misses.WithLabelValues(id),
		evicts:  a.evicts.MustCurryWith(prometheus.Labels{"cache": id}),
		entries: a.entries.WithLabelValues(id),
	}
}

type region struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	evicts  *prometheus.CounterVec
	entries prometheus.Gauge
}

// Hit increments the hit counter.
func (r *region) Hit() { r.hits.Inc() }

// Miss increments the miss counter.
func (r *region) Miss() { r.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (r *region) Evict(reason cache.EvictReason) {
	r.evicts.WithLabelValues(reason.String()).Inc()
}

// Size updates the resident entries gauge.
func (r *region) Size(entries int) { r.entries.Set(float64(entries)) }

// Compile-time check: ensure region implements cache.Metrics.
var _ cache.Metrics = (*region)(nil)
