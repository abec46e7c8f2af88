package sheets

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "law_office_store_request_seconds",
	Help:    "Latency of external store requests by operation and outcome.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
}, []string{"operation", "outcome"})

func observe(operation, outcome string, start time.Time) {
	requestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
