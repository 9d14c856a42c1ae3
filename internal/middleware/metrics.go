package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// NotificationsDispatched counts persisted notifications by kind.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_dispatched_total",
		Help: "Total number of notifications dispatched by kind",
	}, []string{"kind"})

	// RealtimePublishFailures counts fire-and-forget publish failures.
	// These never fail the triggering operation; the counter is the only signal.
	RealtimePublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ripple_realtime_publish_failures_total",
		Help: "Total number of failed realtime event publishes",
	})

	// WebSocketConnections is the gauge of active websocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketDrops counts messages dropped due to backpressure by reason.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_websocket_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
