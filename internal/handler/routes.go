package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moments-gateway/internal/config"
	"moments-gateway/internal/metrics"
)

// RegisterRoutes wires all route handlers onto the Echo instance.
// The diagnostic proxy-ping route is registered as a static path, which Echo
// matches ahead of the wildcard, so it never reaches the forwarder.
func RegisterRoutes(e *echo.Echo, cfg *config.Config, proxy *ProxyHandler, ping *PingHandler, health *HealthHandler, m *metrics.Metrics) {
	e.GET("/healthz", health.Healthz)
	e.GET("/proxy/status", health.Status)

	e.GET("/api/proxy-ping", ping.ProxyPing)
	e.Any("/api", proxy.Handle)
	e.Any("/api/*", proxy.Handle)

	if cfg.Metrics.Enabled && m != nil {
		e.GET(cfg.Metrics.Path, echo.WrapHandler(promhttp.HandlerFor(
			m.Registry,
			promhttp.HandlerOpts{},
		)))
	}
}
