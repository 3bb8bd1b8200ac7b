package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"moments-gateway/internal/config"
)

// pingResponse is the diagnostic body for the proxy-ping endpoint.
type pingResponse struct {
	Proxy       bool `json:"proxy"`
	UpstreamSet bool `json:"upstreamSet"`
}

// PingHandler answers the reserved diagnostic path locally, without ever
// touching the forwarder. It lets an operator tell "this gateway is deployed
// and reachable" apart from "the backend behind it is reachable".
type PingHandler struct {
	cfg *config.Config
}

// NewPingHandler creates a PingHandler.
func NewPingHandler(cfg *config.Config) *PingHandler {
	return &PingHandler{cfg: cfg}
}

// ProxyPing returns 200 with the gateway's identity and whether an upstream
// origin is configured.
func (h *PingHandler) ProxyPing(c echo.Context) error {
	return c.JSON(http.StatusOK, pingResponse{
		Proxy:       true,
		UpstreamSet: h.cfg.Upstream.Origin != "",
	})
}
