package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trbridge"

var (
	ConnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connect_attempts_total",
		Help:      "Connection attempts against the RPC server by result.",
	}, []string{"result"})

	SessionState = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_state",
		Help:      "Current session state: 0 disconnected, 1 unauthenticated, 2 authenticated.",
	})

	GuardRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_rejections_total",
		Help:      "Operations short-circuited because the session was unusable.",
	}, []string{"operation", "reason"})

	OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Torrent operation duration in seconds by outcome.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"operation", "outcome"})

	ConfigWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_writes_total",
		Help:      "Config store rewrites by result.",
	}, []string{"result"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "route"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		ConnectAttempts,
		SessionState,
		GuardRejections,
		OperationDuration,
		ConfigWrites,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
