package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "people",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	PeopleCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "people",
		Name:      "created_total",
		Help:      "Total number of people created",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "people",
		Name:      "store_errors_total",
		Help:      "Repository calls that failed with a transport error",
	}, []string{"operation"})
)
