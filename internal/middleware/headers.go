package middleware

import (
	"github.com/labstack/echo/v4"
)

// HeaderProxyMarker is stamped on every response this gateway emits, success
// or failure. Its presence alone proves this layer (not some other proxy)
// produced the response.
const HeaderProxyMarker = "X-Moments-Proxy"

// ProxyMarkerValue is the fixed value of the marker header.
const ProxyMarkerValue = "1"

// hopByHopHeaders are headers that should not be forwarded by proxies.
var hopByHopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"TE",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// GatewayHeaders returns an Echo middleware that stamps the proxy marker
// header, strips hop-by-hop headers from the inbound request, and adds
// security headers to the response.
//
// The marker is set before the handler runs so that error-path responses
// written by the central error handler carry it too.
func GatewayHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, h := range hopByHopHeaders {
				c.Request().Header.Del(h)
			}

			c.Response().Header().Set(HeaderProxyMarker, ProxyMarkerValue)

			err := next(c)

			c.Response().Header().Set("X-Content-Type-Options", "nosniff")
			c.Response().Header().Set("X-Frame-Options", "DENY")

			return err
		}
	}
}
