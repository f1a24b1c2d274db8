package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MRD-HG/WilliamMetalAPI/pkg/logger"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

// Metrics registra latencia y conteo por método, ruta (patrón, no URL) y status.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if status < fiber.StatusBadRequest {
				status = fiber.StatusInternalServerError
			}
		}
		// Los strings de fiber apuntan a buffers reutilizados; las etiquetas deben ser copias.
		labels := []string{utils.CopyString(c.Method()), utils.CopyString(c.Route().Path), strconv.Itoa(status)}
		telemetry.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		telemetry.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		return err
	}
}

// MetricsHandler expone el registro de Prometheus.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RequestLogger una línea por petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}
