package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_MiddlewareUsesRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewHTTPMetrics(registry)

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Post("/orders", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", nil))

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/orders/{id}", http.MethodGet, "404")); got != 2 {
		t.Fatalf("expected 2 requests for /orders/{id}, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("/orders", http.MethodPost, "200")); got != 1 {
		t.Fatalf("expected 1 POST /orders, got %v", got)
	}
}
