package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestResponseWriterStatusCapture(t *testing.T) {
	tests := []struct {
		name       string
		writeCode  int
		wantStatus int
	}{
		{"default is 200", 0, http.StatusOK},
		{"explicit 404", http.StatusNotFound, http.StatusNotFound},
		{"explicit 422", http.StatusUnprocessableEntity, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := newResponseWriter(httptest.NewRecorder())
			if tt.writeCode != 0 {
				rw.WriteHeader(tt.writeCode)
			}
			if rw.statusCode != tt.wantStatus {
				t.Errorf("statusCode = %d, want %d", rw.statusCode, tt.wantStatus)
			}
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	// Mount through chi so the middleware can resolve the route pattern
	// instead of recording raw URLs.
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Post("/api/backtest", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/api/backtest", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestMetricsMiddleware_ErrorStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	req := httptest.NewRequest("GET", "/api/backtest", nil)
	w := httptest.NewRecorder()
	MetricsMiddleware(handler).ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}
