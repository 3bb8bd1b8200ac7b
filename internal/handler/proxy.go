package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"

	"moments-gateway/internal/model"
	"moments-gateway/internal/service"
)

// ProxyHandler forwards API requests to the backend tier.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle normalizes the inbound request, forwards it upstream, and streams
// the normalized response back. All failures terminate with a structured
// JSON body; nothing is retried here.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	rawQuery := req.URL.RawQuery
	if rawQuery != "" {
		rawQuery = "?" + rawQuery
	}

	pr := &model.ProxyRequest{
		Ctx:      req.Context(),
		Method:   req.Method,
		Path:     c.Param("*"),
		RawQuery: rawQuery,
		Header:   service.FilterRequestHeaders(req.Header),
	}

	// Bodies are read in full and forwarded as-is (the gateway carries
	// text/JSON payloads, not raw binary upload streams); the body limit
	// middleware bounds the size.
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return h.handlerError(c, err)
		}
		pr.Body = bytes.NewReader(raw)
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}
	defer func() { _ = resp.Body.Close() }()

	for key, vals := range resp.Header {
		for _, v := range vals {
			c.Response().Header().Add(key, v)
		}
	}

	c.Response().WriteHeader(resp.StatusCode)

	// Stream the upstream body directly to the client. If io.Copy fails
	// mid-stream the status has already been sent; the client receives a
	// truncated response with the original status. We log it for
	// observability.
	if _, err := io.Copy(c.Response(), resp.Body); err != nil {
		h.logger.Error("streaming response body",
			"err", err,
			"path", req.URL.Path,
		)
	}

	return nil
}

// mapError is the inner failure boundary: forwarder errors become 504 (the
// per-call deadline expired) or 502 (the backend was unreachable), always
// with a ProxyError body.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	var te *service.TransportError
	if errors.As(err, &te) {
		h.logger.Error("upstream transport error",
			"method", te.Method,
			"url", te.URL,
			"err", te.Err.Error(),
		)

		status := http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		return c.JSON(status, model.ErrorBody{
			Detail: "API proxy error: " + te.Error() + ". Is the upstream configured? Check the backend tier's availability.",
			Type:   model.TypeProxyError,
		})
	}

	return h.handlerError(c, err)
}

// handlerError is the outer failure boundary for anything that is not a
// transport error: malformed routing input, body read failures, and the like.
func (h *ProxyHandler) handlerError(c echo.Context, err error) error {
	h.logger.Error("proxy handler error",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"err", err.Error(),
	)

	return c.JSON(http.StatusBadGateway, model.ErrorBody{
		Detail: "Proxy handler error: " + err.Error(),
		Type:   model.TypeProxyError,
	})
}

// isTimeout reports whether the outbound call failed because its deadline
// expired rather than because the backend was unreachable.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
