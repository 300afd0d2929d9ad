package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mtm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Matching metrics
	matchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mtm_match_requests_total",
			Help: "Total number of matching requests",
		},
		[]string{"status"},
	)

	matchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtm_match_duration_seconds",
			Help:    "Template matching duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	matchDetections = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtm_match_detections",
			Help:    "Number of detections returned per matching request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	matchTemplatesPerRequest = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mtm_match_templates_per_request",
			Help:    "Number of templates submitted per matching request",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50},
		},
	)
)
