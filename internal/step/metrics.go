package step

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	objects prometheus.Counter
	rows    prometheus.Counter
	routed  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		objects: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "avro_projector_objects_total",
			Help: "Total number of input objects projected.",
		}),
		rows: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "avro_projector_rows_total",
			Help: "Total number of output rows emitted.",
		}),
		routed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "avro_projector_routed_errors_total",
			Help: "Total number of inputs passed to the error handler, by error kind.",
		}, []string{"kind"}),
	}
}
