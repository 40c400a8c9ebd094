package wfs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parcelwfs_requests_total",
			Help: "WFS GetFeature requests by country, category and outcome.",
		},
		[]string{"country", "category", "code"},
	)
	requestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parcelwfs_request_seconds",
			Help:    "WFS GetFeature request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"country", "category"},
	)
	capabilitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parcelwfs_capabilities_requests_total",
			Help: "WFS GetCapabilities requests by endpoint and outcome.",
		},
		[]string{"endpoint", "code"},
	)
)

func observeRequest(spec *Spec, elapsed time.Duration, err error) {
	requestsTotal.WithLabelValues(spec.Country, string(spec.Category), statusLabel(err)).Inc()
	requestSeconds.WithLabelValues(spec.Country, string(spec.Category)).Observe(elapsed.Seconds())
}

func observeCapabilities(endpoint string, _ time.Duration, err error) {
	capabilitiesTotal.WithLabelValues(endpoint, statusLabel(err)).Inc()
}
