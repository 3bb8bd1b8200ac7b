package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"moments-gateway/internal/config"
)

func TestProxyPing_UpstreamSet(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-ping", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	cfg := &config.Config{
		Upstream: config.UpstreamConfig{Origin: "https://api.example.com"},
	}
	h := NewPingHandler(cfg)
	if err := h.ProxyPing(c); err != nil {
		t.Fatalf("ProxyPing() error = %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var body struct {
		Proxy       bool `json:"proxy"`
		UpstreamSet bool `json:"upstreamSet"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Proxy {
		t.Error("proxy = false, want true")
	}
	if !body.UpstreamSet {
		t.Error("upstreamSet = false, want true")
	}
}

func TestProxyPing_UpstreamUnset(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/proxy-ping", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewPingHandler(&config.Config{})
	if err := h.ProxyPing(c); err != nil {
		t.Fatalf("ProxyPing() error = %v", err)
	}

	var body struct {
		Proxy       bool `json:"proxy"`
		UpstreamSet bool `json:"upstreamSet"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Proxy {
		t.Error("proxy = false, want true")
	}
	if body.UpstreamSet {
		t.Error("upstreamSet = true, want false")
	}
}
