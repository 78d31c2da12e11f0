package schemacache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	fallbacks prometheus.Counter
	size      prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		hits: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "avro_projector_schema_cache_hits_total",
			Help: "Total number of per-row schema keys found in the cache.",
		}),
		misses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "avro_projector_schema_cache_misses_total",
			Help: "Total number of per-row schema keys resolved because they were not cached.",
		}),
		fallbacks: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "avro_projector_schema_cache_fallbacks_total",
			Help: "Total number of per-row schema keys that failed to resolve and fell back to the default schema.",
		}),
		size: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "avro_projector_schema_cache_entries",
			Help: "Number of schemas currently cached.",
		}),
	}
}
