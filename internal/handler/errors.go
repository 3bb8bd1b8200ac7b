package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"moments-gateway/internal/model"
)

// NewHTTPErrorHandler returns Echo's central error handler, the outermost
// failure boundary: any error that escapes the per-request pipeline —
// including panics surfaced by the recover middleware — still produces a
// parseable JSON body. Routing-level errors (404, 405) keep their status;
// everything else is a 502 handler error.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	log := logger.With("component", "error_handler")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, model.ErrorBody{
				Detail: fmt.Sprintf("%v", he.Message),
				Type:   model.TypeProxyError,
			})
			return
		}

		log.Error("unhandled request error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"err", err.Error(),
		)

		_ = c.JSON(http.StatusBadGateway, model.ErrorBody{
			Detail: "Proxy handler error: " + err.Error(),
			Type:   model.TypeProxyError,
		})
	}
}
