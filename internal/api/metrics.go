package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequests counts served requests.
	// Labels: route (chi pattern), method, status
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarpath",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// httpLatency measures handler latency.
	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "scholarpath",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})

	// rateLimited counts requests rejected with 429.
	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "scholarpath",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-client rate limiter",
	})

	// cacheLookups counts response cache lookups.
	// Labels: result (hit, miss)
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scholarpath",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Response cache lookups by result",
	}, []string{"result"})
)
