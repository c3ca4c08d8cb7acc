package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "carmarket_redis_errors_total",
		Help: "Total number of Redis command errors.",
	},
	[]string{"command"},
)

// ModerationDecisions counts admin approve/reject decisions on listings.
var ModerationDecisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "carmarket_moderation_decisions_total",
		Help: "Total number of listing moderation decisions, by outcome.",
	},
	[]string{"decision"},
)

// AuthRejections counts authenticated requests refused by the auth gate.
var AuthRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "carmarket_auth_rejections_total",
		Help: "Total number of rejected authentication attempts, by reason.",
	},
	[]string{"reason"},
)

// InitMetrics creates the fiberprometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
