// Package model defines shared types for the gateway.
package model

import (
	"context"
	"io"
	"net/http"
)

// ProxyRequest is a normalized inbound request ready to be forwarded upstream.
//
// Path is the joined wildcard remainder with no leading slash ("" for a bare
// prefix request). RawQuery includes its leading "?" when non-empty so the
// outbound URL can be assembled by plain concatenation. Header holds only the
// allow-listed subset. Body is nil for GET/HEAD.
type ProxyRequest struct {
	Ctx      context.Context
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     io.Reader
}

// ProxyResponse is the upstream response after header and 5xx-body
// normalization, ready to be streamed back to the client.
type ProxyResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Error type discriminators carried in the "type" field of error bodies.
const (
	TypeProxyError    = "ProxyError"
	TypeUpstreamError = "UpstreamError"
)

// ErrorBody is the uniform JSON error payload. Every 5xx response this
// gateway emits carries this shape (or an upstream body that already looks
// like a JSON object).
type ErrorBody struct {
	Detail string `json:"detail"`
	Type   string `json:"type"`
}
