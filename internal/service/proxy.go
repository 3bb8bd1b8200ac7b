// Package service implements the core forwarding logic: request
// normalization, outbound URL construction, and response normalization.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"moments-gateway/internal/client"
	"moments-gateway/internal/config"
	"moments-gateway/internal/model"
)

// forwardableRequestHeaders are the only request headers forwarded upstream.
// Everything else, Host and hop-by-hop headers included, is dropped so the
// outbound call targets the configured backend host rather than whatever
// host the inbound request named.
var forwardableRequestHeaders = []string{
	"Accept",
	"Accept-Language",
	"Content-Type",
	"Authorization",
	"Cookie",
	"Cache-Control",
	"Pragma",
}

// forwardableResponseHeaders are the only response headers forwarded to the client.
var forwardableResponseHeaders = map[string]bool{
	"Content-Type":                true,
	"Cache-Control":               true,
	"Access-Control-Allow-Origin": true,
}

const userAgent = "moments-gateway/1.0"

// emptyBodyDetail replaces an empty upstream 5xx body when wrapping it.
const emptyBodyDetail = "Upstream returned an error with no body"

// TransportError reports a failed outbound call: the backend could not be
// reached at all (DNS failure, connection refused/reset, deadline expiry).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProxyService forwards normalized requests to the backend API.
type ProxyService struct {
	client *client.UpstreamClient
	cfg    *config.Config
	logger *slog.Logger
	origin string
}

// NewProxyService creates a ProxyService. The origin comes from config with
// its trailing slash already trimmed.
func NewProxyService(c *client.UpstreamClient, cfg *config.Config, logger *slog.Logger) *ProxyService {
	return &ProxyService{
		client: c,
		cfg:    cfg,
		logger: logger.With("component", "proxy_service"),
		origin: cfg.Upstream.Origin,
	}
}

// Origin returns the configured upstream origin.
func (s *ProxyService) Origin() string {
	return s.origin
}

// Forward sends a ProxyRequest to the backend and returns the normalized
// response. The caller is responsible for closing the response body.
// A failure to reach the backend is returned as *TransportError.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	upstreamURL := s.buildUpstreamURL(pr.Path, pr.RawQuery)

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"url", upstreamURL,
	)

	resp, err := s.client.Do(pr.Ctx, pr.Method, upstreamURL, pr.Header, pr.Body)
	if err != nil {
		return nil, &TransportError{Method: pr.Method, URL: upstreamURL, Err: err}
	}

	resp.Header = filterResponseHeaders(resp.Header)

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		if err := normalizeErrorBody(resp); err != nil {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("read upstream error body: %w", err)
		}
	}

	return resp, nil
}

// buildUpstreamURL assembles the outbound URL by concatenation. The raw query
// is passed through verbatim, never re-encoded, so the backend sees exactly
// the query the front-end sent.
func (s *ProxyService) buildUpstreamURL(path, rawQuery string) string {
	return s.origin + "/" + path + rawQuery
}

// FilterRequestHeaders returns the allow-listed subset of src. Names match
// case-insensitively; values are copied verbatim, multi-values preserved.
// A gateway User-Agent is always set.
func FilterRequestHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	for _, key := range forwardableRequestHeaders {
		if vals := src.Values(key); len(vals) > 0 {
			dst[http.CanonicalHeaderKey(key)] = vals
		}
	}
	dst.Set("User-Agent", userAgent)
	// Upstream responses must not be served from an intermediary cache.
	if dst.Get("Cache-Control") == "" {
		dst.Set("Cache-Control", "no-store")
	}
	return dst
}

func filterResponseHeaders(src http.Header) http.Header {
	dst := make(http.Header)
	for key, vals := range src {
		if forwardableResponseHeaders[http.CanonicalHeaderKey(key)] {
			dst[http.CanonicalHeaderKey(key)] = vals
		}
	}
	return dst
}

// looksLikeJSONObject reports whether a body is plausibly a JSON object:
// trimmed, it starts with '{' and ends with '}'. This is deliberately a
// shape check, not a parse — a 5xx body that merely brackets itself in
// braces (say, an embedded stack trace) passes through unwrapped, and
// downstream callers depend on that exact boundary. Swapping in an actual
// parse is the known follow-up.
func looksLikeJSONObject(body []byte) bool {
	t := bytes.TrimSpace(body)
	return len(t) >= 2 && t[0] == '{' && t[len(t)-1] == '}'
}

// normalizeErrorBody enforces the 5xx contract: the body must be a JSON
// object with "detail" and "type" fields. A body that already looks
// JSON-shaped passes through untouched; anything else is wrapped as an
// UpstreamError and the content type forced to application/json.
func normalizeErrorBody(resp *model.ProxyResponse) error {
	raw, err := io.ReadAll(resp.Body)
	if cerr := resp.Body.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if looksLikeJSONObject(raw) {
		resp.Body = io.NopCloser(bytes.NewReader(raw))
		return nil
	}

	detail := strings.TrimSpace(string(raw))
	if detail == "" {
		detail = emptyBodyDetail
	}
	wrapped, err := json.Marshal(model.ErrorBody{Detail: detail, Type: model.TypeUpstreamError})
	if err != nil {
		return err
	}

	resp.Header.Set("Content-Type", "application/json")
	resp.Body = io.NopCloser(bytes.NewReader(wrapped))
	return nil
}
