package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "rides_created_total",
		Help: "Total rides created",
	})
	RidesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "rides_completed_total",
		Help: "Total rides completed",
	})
	ClaimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_dispatch", Name: "ride_claim_conflicts_total",
		Help: "Confirm attempts that lost the claim race",
	})
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ride_dispatch", Name: "ws_connections",
		Help: "Currently open websocket connections",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_dispatch", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_dispatch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
