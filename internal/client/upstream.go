// Package client provides the upstream HTTP client for the backend API tier.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"moments-gateway/internal/config"
	"moments-gateway/internal/metrics"
	"moments-gateway/internal/model"
)

// UpstreamClient sends requests to the backend API.
type UpstreamClient struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewUpstreamClient creates an UpstreamClient with connection pooling and a
// bounded per-call timeout. The metrics parameter is optional; pass nil to
// disable upstream metrics recording.
func NewUpstreamClient(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *UpstreamClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.Upstream.IdleConnections,
		MaxIdleConnsPerHost: cfg.Upstream.IdleConnections,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	return &UpstreamClient{
		httpClient: &http.Client{Transport: transport},
		timeout:    time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second,
		logger:     logger.With("component", "upstream_client"),
		metrics:    m,
	}
}

// Do executes a request against the backend and returns the raw response.
// The caller is responsible for closing the response body.
//
// The per-call deadline is derived from the inbound request context, so a
// client disconnect cancels the in-flight backend call; the configured
// timeout caps it either way. The context deadline (rather than
// http.Client.Timeout) is used so that deadline expiry surfaces as
// context.DeadlineExceeded and can be mapped distinctly from a connection
// failure.
func (c *UpstreamClient) Do(ctx context.Context, method, url string, header http.Header, body io.Reader) (*model.ProxyResponse, error) {
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header = header

	c.logger.Debug("upstream request",
		"method", method,
		"url", url,
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:bodyclose // body ownership transfers to caller via ProxyResponse
	duration := time.Since(start).Seconds()

	normMethod := metrics.NormalizeMethod(method)

	if err != nil {
		cancel()
		if c.metrics != nil {
			c.metrics.UpstreamDuration.WithLabelValues(normMethod).Observe(duration)
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}

	if c.metrics != nil {
		status := strconv.Itoa(resp.StatusCode)
		c.metrics.UpstreamDuration.WithLabelValues(normMethod).Observe(duration)
		c.metrics.UpstreamResponses.WithLabelValues(normMethod, status).Inc()
	}

	return &model.ProxyResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
	}, nil
}

// cancelOnClose releases the per-call timeout context when the response body
// is closed, keeping the timer from outliving the request.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
