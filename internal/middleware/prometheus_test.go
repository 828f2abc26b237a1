// Clearcast Playout Engine
// Copyright 2026 Clearcast Broadcast Systems
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clearcast/playoutd

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestPrometheusMetrics_RecordsStatusAndMethod(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
	}{
		{"enqueue success", http.MethodPost, http.StatusCreated},
		{"dequeue not found", http.MethodDelete, http.StatusNotFound},
		{"engine failure", http.MethodPut, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(tt.method, "/api/v1/queue", nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestPrometheusMetrics_DefaultsTo200(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected default status 200, got %d", rec.Code)
	}
}

// routeLabel is what keeps per-node queue URLs (/api/v1/queue/42/skip) from
// creating one time series per node id; confirm it prefers chi's matched
// pattern and only falls back to the raw path without a route context.
func TestRouteLabel_PrefersChiPattern(t *testing.T) {
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/api/v1/queue/{id}/skip"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/queue/42/skip", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	if got := routeLabel(req); got != "/api/v1/queue/{id}/skip" {
		t.Errorf("expected matched route pattern, got %q", got)
	}
}

func TestRouteLabel_FallsBackToRawPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/42", nil)
	if got := routeLabel(req); got != "/api/v1/queue/42" {
		t.Errorf("expected raw path fallback, got %q", got)
	}
}

func TestMetricsResponseWriter_WriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapper.WriteHeader(http.StatusNotFound)

	if wrapper.statusCode != http.StatusNotFound || rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 on wrapper and recorder, got wrapper=%d recorder=%d", wrapper.statusCode, rec.Code)
	}
}

func TestMetricsResponseWriter_PreservesWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec}

	n, err := wrapper.Write([]byte("queue updated"))
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}
	if n != len("queue updated") {
		t.Errorf("expected %d bytes written, got %d", len("queue updated"), n)
	}
	if rec.Body.String() != "queue updated" {
		t.Errorf("expected body to reach underlying recorder, got %q", rec.Body.String())
	}
}

func TestMetricsResponseWriter_DefaultStatusIsOK(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapper := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapper.Write([]byte("unchanged"))

	if wrapper.statusCode != http.StatusOK {
		t.Errorf("expected default status 200, got %d", wrapper.statusCode)
	}
}
