// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"pagecraft/internal/metrics"
)

// scrape returns the text exposition of the default registry.
func scrape(t *testing.T) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/metrics-test/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics-test/"+id, nil))
		if rr.Code != http.StatusTeapot {
			t.Fatalf("status: got %d, want 418", rr.Code)
		}
	}

	want := `pagecraft_http_requests_total{method="GET",route="/metrics-test/{id}",status="418"} 3`
	if body := scrape(t); !strings.Contains(body, want) {
		t.Errorf("exposition missing %q", want)
	}
}

func TestMetricsUnmatchedRoute(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/nope", nil))

	want := `pagecraft_http_requests_total{method="DELETE",route="unmatched",status="410"} 1`
	if body := scrape(t); !strings.Contains(body, want) {
		t.Errorf("exposition missing %q", want)
	}
}
